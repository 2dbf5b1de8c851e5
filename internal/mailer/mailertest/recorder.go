// Package mailertest provides an in-memory mailer.Dispatcher for tests.
package mailertest

import (
	"context"
	"sync"

	"github.com/poofware/submission-service/internal/mailer"
)

// Recorder records every message it is asked to send. Sends whose tag has
// an entry in FailTags return that error instead.
type Recorder struct {
	FailTags map[string]error
	PingErr  error

	mu   sync.Mutex
	sent []mailer.Message
}

var _ mailer.Dispatcher = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{FailTags: map[string]error{}}
}

func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	if err, ok := r.FailTags[msg.Tag]; ok {
		return err
	}
	return nil
}

func (r *Recorder) Ping(context.Context) error { return r.PingErr }

func (r *Recorder) Provider() string { return "recorder" }

// Sent returns a copy of the recorded messages in send order.
func (r *Recorder) Sent() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

// ByTag returns the first recorded message with tag.
func (r *Recorder) ByTag(tag string) (mailer.Message, bool) {
	for _, m := range r.Sent() {
		if m.Tag == tag {
			return m, true
		}
	}
	return mailer.Message{}, false
}
