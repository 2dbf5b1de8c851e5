package mailer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/poofware/submission-service/internal/utils"
)

var _ Dispatcher = (*Log)(nil)

// Log is the development transport: it records the envelope instead of
// sending anything.
type Log struct {
	from   Address
	logger logrus.FieldLogger
}

func NewLog(opts Options) *Log {
	return &Log{from: opts.From, logger: utils.Logger}
}

func (l *Log) Provider() string { return ProviderLog }

func (l *Log) Ping(_ context.Context) error { return nil }

func (l *Log) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return deliveryError(ProviderLog, msg, err)
	}
	l.logger.WithFields(logrus.Fields{
		"from":       senderFor(msg, l.from).String(),
		"to":         msg.To,
		"reply_to":   msg.ReplyTo,
		"subject":    msg.Subject,
		"tag":        msg.Tag,
		"html_bytes": len(msg.HTML),
	}).Info("email not sent (log transport)")
	return nil
}
