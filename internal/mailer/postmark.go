package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"
)

var _ Dispatcher = (*Postmark)(nil)

// Postmark sends through Postmark's transactional API.
type Postmark struct {
	client  *postmark.Client
	from    Address
	timeout time.Duration
}

func NewPostmark(opts Options) (*Postmark, error) {
	if opts.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	return &Postmark{
		client:  postmark.NewClient(opts.PostmarkServerToken, opts.PostmarkAccountToken),
		from:    opts.From,
		timeout: opts.Timeout,
	}, nil
}

func (p *Postmark) Provider() string { return ProviderPostmark }

func (p *Postmark) Ping(_ context.Context) error { return nil }

func (p *Postmark) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return deliveryError(ProviderPostmark, msg, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     senderFor(msg, p.from).String(),
		To:       msg.To,
		ReplyTo:  msg.ReplyTo,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return deliveryError(ProviderPostmark, msg, err)
	}
	if resp.ErrorCode > 0 {
		return deliveryError(ProviderPostmark, msg,
			fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
