package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

var _ Dispatcher = (*SMTP)(nil)

// SMTP sends through an authenticated SMTP relay, one connection per message.
type SMTP struct {
	host        string
	port        int
	username    string
	password    string
	implicitTLS bool
	from        Address
	timeout     time.Duration
}

func NewSMTP(opts Options) (*SMTP, error) {
	if opts.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", ErrInvalidConfig)
	}
	if opts.SMTPPort <= 0 {
		return nil, fmt.Errorf("%w: SMTP port is required", ErrInvalidConfig)
	}
	return &SMTP{
		host:        opts.SMTPHost,
		port:        opts.SMTPPort,
		username:    opts.SMTPUsername,
		password:    opts.SMTPPassword,
		implicitTLS: opts.SMTPImplicitTLS,
		from:        opts.From,
		timeout:     opts.Timeout,
	}, nil
}

func (s *SMTP) Provider() string { return ProviderSMTP }

func (s *SMTP) Ping(_ context.Context) error {
	if s.username != "" && s.password == "" {
		return fmt.Errorf("smtp password missing for user %s", s.username)
	}
	return nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return deliveryError(ProviderSMTP, msg, err)
	}
	if err := s.send(ctx, msg); err != nil {
		return deliveryError(ProviderSMTP, msg, err)
	}
	return nil
}

func (s *SMTP) send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	tlsConfig := &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}
	if s.implicitTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if !s.implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	from := senderFor(msg, s.from)
	if err := c.Mail(from.Email); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	body, err := buildMIME(from, msg, time.Now())
	if err != nil {
		wc.Close()
		return err
	}
	if _, err := wc.Write(body); err != nil {
		wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("end data: %w", err)
	}
	return c.Quit()
}

// buildMIME renders a single-part text/html message.
func buildMIME(from Address, msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}
