package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var _ Dispatcher = (*SendGrid)(nil)

// SendGrid sends through the SendGrid v3 mail API.
type SendGrid struct {
	apiKey  string
	client  *sendgrid.Client
	from    Address
	timeout time.Duration
}

func NewSendGrid(opts Options) (*SendGrid, error) {
	if opts.SendGridAPIKey == "" {
		return nil, fmt.Errorf("%w: SendGrid API key is required", ErrInvalidConfig)
	}
	return &SendGrid{
		apiKey:  opts.SendGridAPIKey,
		client:  sendgrid.NewSendClient(opts.SendGridAPIKey),
		from:    opts.From,
		timeout: opts.Timeout,
	}, nil
}

func (s *SendGrid) Provider() string { return ProviderSendGrid }

func (s *SendGrid) Ping(_ context.Context) error {
	// nothing external to check; just ensure the key looks sane
	if len(s.apiKey) < 10 {
		return fmt.Errorf("sendgrid key too short")
	}
	return nil
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return deliveryError(ProviderSendGrid, msg, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sender := senderFor(msg, s.from)
	from := mail.NewEmail(sender.Name, sender.Email)
	to := mail.NewEmail("", msg.To)

	m := mail.NewSingleEmail(from, msg.Subject, to, "", msg.HTML)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Tag != "" {
		m.AddCategories(msg.Tag)
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return deliveryError(ProviderSendGrid, msg, err)
	}
	if resp.StatusCode >= 300 {
		return deliveryError(ProviderSendGrid, msg,
			fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body))
	}
	return nil
}
