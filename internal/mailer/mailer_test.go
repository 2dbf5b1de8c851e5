package mailer

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFrom = Address{Name: "Website Forms", Email: "forms@example.com"}

func testMessage() Message {
	return Message{
		To:      "admin@example.com",
		Subject: "New Quote Request from Jo Smith",
		ReplyTo: "jo@example.com",
		HTML:    "<p>Hello</p>",
		Tag:     "admin",
	}
}

func TestNewSelectsProvider(t *testing.T) {
	base := Options{From: testFrom, SMTPHost: "smtp.example.com", SMTPPort: 587, SendGridAPIKey: "SG.abcdefghijk", PostmarkServerToken: "pm-token"}

	for provider, want := range map[string]string{
		"":               ProviderSMTP,
		ProviderSMTP:     ProviderSMTP,
		ProviderSendGrid: ProviderSendGrid,
		ProviderPostmark: ProviderPostmark,
		ProviderLog:      ProviderLog,
	} {
		opts := base
		opts.Provider = provider
		d, err := New(opts)
		require.NoError(t, err, provider)
		assert.Equal(t, want, d.Provider())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Options{Provider: ProviderLog})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Options{Provider: "carrier-pigeon", From: testFrom})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Options{Provider: ProviderSMTP, From: testFrom})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Options{Provider: ProviderSendGrid, From: testFrom})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Options{Provider: ProviderPostmark, From: testFrom})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDeliveryErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := deliveryError(ProviderSMTP, testMessage(), cause)

	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.ErrorIs(t, err, cause)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "admin", de.Tag)
	assert.Equal(t, "admin@example.com", de.To)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendRejectsIncompleteMessage(t *testing.T) {
	d := NewLog(Options{From: testFrom})
	err := d.Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestBuildMIME(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := buildMIME(testFrom, testMessage(), now)
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, "From: \"Website Forms\" <forms@example.com>\r\n")
	assert.Contains(t, s, "To: admin@example.com\r\n")
	assert.Contains(t, s, "Reply-To: jo@example.com\r\n")
	assert.Contains(t, s, "Subject: New Quote Request from Jo Smith\r\n")
	assert.Contains(t, s, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, s, "<p>Hello</p>")
}

func TestBuildMIMEOmitsEmptyReplyTo(t *testing.T) {
	msg := testMessage()
	msg.ReplyTo = ""
	b, err := buildMIME(testFrom, msg, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "Reply-To:")
}

// fakeSMTPServer accepts one session and records the DATA payload.
type fakeSMTPServer struct {
	ln   net.Listener
	mu   sync.Mutex
	from string
	rcpt string
	data string
	done chan struct{}
}

func newFakeSMTPServer(t *testing.T) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeSMTPServer{ln: ln, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTPServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	reply := func(line string) {
		rw.WriteString(line + "\r\n")
		rw.Flush()
	}
	reply("220 localhost ESMTP fake")

	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "MAIL FROM:"):
			s.mu.Lock()
			s.from = strings.TrimSpace(line[len("MAIL FROM:"):])
			s.mu.Unlock()
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			s.mu.Lock()
			s.rcpt = strings.TrimSpace(line[len("RCPT TO:"):])
			s.mu.Unlock()
			reply("250 OK")
		case cmd == "DATA":
			reply("354 end with .")
			var sb strings.Builder
			for {
				l, err := rw.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			s.mu.Lock()
			s.data = sb.String()
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestSMTPSendDeliversMessage(t *testing.T) {
	srv := newFakeSMTPServer(t)

	d, err := NewSMTP(Options{From: testFrom, SMTPHost: "127.0.0.1", SMTPPort: srv.port(), Timeout: 5 * time.Second})
	require.NoError(t, err)

	require.NoError(t, d.Send(context.Background(), testMessage()))
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "<forms@example.com>", srv.from)
	assert.Equal(t, "<admin@example.com>", srv.rcpt)
	assert.Contains(t, srv.data, "Reply-To: jo@example.com")
	assert.Contains(t, srv.data, "<p>Hello</p>")
}

func TestSMTPSendReportsDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	d, err := NewSMTP(Options{From: testFrom, SMTPHost: "127.0.0.1", SMTPPort: port, Timeout: time.Second})
	require.NoError(t, err)

	err = d.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "127.0.0.1:"+strconv.Itoa(port))
}

func TestPostmarkSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":0,"Message":"OK","MessageID":"abc"}`))
	}))
	defer srv.Close()

	d, err := NewPostmark(Options{From: testFrom, PostmarkServerToken: "token", Timeout: time.Second})
	require.NoError(t, err)
	d.client.BaseURL = srv.URL

	require.NoError(t, d.Send(context.Background(), testMessage()))
	assert.Equal(t, "admin@example.com", got["To"])
	assert.Equal(t, "jo@example.com", got["ReplyTo"])
	assert.Equal(t, "admin", got["Tag"])
}

func TestPostmarkSendReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":406,"Message":"Inactive recipient"}`))
	}))
	defer srv.Close()

	d, err := NewPostmark(Options{From: testFrom, PostmarkServerToken: "token", Timeout: time.Second})
	require.NoError(t, err)
	d.client.BaseURL = srv.URL

	err = d.Send(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "Inactive recipient")
}

func TestSendGridPing(t *testing.T) {
	d, err := NewSendGrid(Options{From: testFrom, SendGridAPIKey: "short"})
	require.NoError(t, err)
	assert.Error(t, d.Ping(context.Background()))

	d, err = NewSendGrid(Options{From: testFrom, SendGridAPIKey: "SG.0123456789abcdef"})
	require.NoError(t, err)
	assert.NoError(t, d.Ping(context.Background()))
}
