// Package mailer hands single HTML messages to one configured outbound
// transport. There is no batching and no retry: one Send is one attempt.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"
)

const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderPostmark = "postmark"
	ProviderLog      = "log"
)

var (
	ErrDeliveryFailed = errors.New("email delivery failed")
	ErrInvalidConfig  = errors.New("invalid mailer config")
	ErrInvalidMessage = errors.New("invalid email message")
)

// Address is a display name plus email address.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is one outbound email. From may be left empty, in which case the
// transport's configured sender identity is used. Tag labels the message
// for logs and provider analytics (e.g. "admin", "acknowledgement").
type Message struct {
	From    Address
	To      string
	Subject string
	ReplyTo string
	HTML    string
	Tag     string
}

func (m Message) validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTML == "" {
		return fmt.Errorf("%w: html body is required", ErrInvalidMessage)
	}
	return nil
}

// DeliveryError reports a failed dispatch with the transport's underlying
// error. It matches both ErrDeliveryFailed and the wrapped cause.
type DeliveryError struct {
	Provider string
	Tag      string
	To       string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s email to %s via %s failed: %v", e.Tag, e.To, e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryFailed, e.Err} }

func deliveryError(provider string, msg Message, err error) error {
	return &DeliveryError{Provider: provider, Tag: msg.Tag, To: msg.To, Err: err}
}

// Dispatcher is the single-operation mail capability.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
	// Ping is a cheap readiness probe; it does not contact the provider.
	Ping(ctx context.Context) error
	Provider() string
}

// Options configures every transport; only the fields for Provider matter.
type Options struct {
	Provider string
	From     Address
	Timeout  time.Duration

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPImplicitTLS bool

	SendGridAPIKey string

	PostmarkServerToken  string
	PostmarkAccountToken string
}

// New builds the dispatcher named by opts.Provider. It is constructed once
// per process and shared by all requests.
func New(opts Options) (Dispatcher, error) {
	if opts.From.Email == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	switch opts.Provider {
	case ProviderSMTP, "":
		return NewSMTP(opts)
	case ProviderSendGrid:
		return NewSendGrid(opts)
	case ProviderPostmark:
		return NewPostmark(opts)
	case ProviderLog:
		return NewLog(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, opts.Provider)
	}
}

func senderFor(msg Message, fallback Address) Address {
	if msg.From.Email != "" {
		return msg.From
	}
	return fallback
}
