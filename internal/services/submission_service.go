package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/poofware/submission-service/internal/forms"
	"github.com/poofware/submission-service/internal/mailer"
	"github.com/poofware/submission-service/internal/metrics"
	"github.com/poofware/submission-service/internal/utils"
	"github.com/poofware/submission-service/internal/validation"
)

// Recipient roles, used as message tags, log fields and metric labels.
const (
	RoleAdmin           = "admin"
	RoleAcknowledgement = "acknowledgement"
)

// ------------------------------------------------------------------
// Service
// ------------------------------------------------------------------

type SubmissionService interface {
	// Submit validates raw against form, renders both emails and sends them
	// concurrently. It returns *validation.Errors for invalid input and a
	// *utils.AppError matching utils.ErrExternalServiceFailure and
	// mailer.ErrDeliveryFailed when either send fails.
	Submit(ctx context.Context, form *forms.Form, raw map[string]any) error
	Ping(ctx context.Context) error // tiny health-probe
}

type submissionService struct {
	dispatcher mailer.Dispatcher
	adminEmail string
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewSubmissionService(d mailer.Dispatcher, adminEmail string, logger logrus.FieldLogger) SubmissionService {
	return &submissionService{
		dispatcher: d,
		adminEmail: adminEmail,
		logger:     logger,
		now:        time.Now,
	}
}

// ------------------------------------------------------------------
// Public API
// ------------------------------------------------------------------

func (s *submissionService) Submit(ctx context.Context, form *forms.Form, raw map[string]any) error {
	log := s.logger.WithField("form", form.Name)

	//-----------------------------------------------------------------
	// 1) Validate
	//-----------------------------------------------------------------
	rec, err := form.Schema.Validate(raw)
	if err != nil {
		var verrs *validation.Errors
		if errors.As(err, &verrs) {
			log.WithField("violations", len(verrs.Fields)).Info("submission rejected by validation")
			metrics.IncFormSubmission(form.Name, metrics.OutcomeInvalid)
		}
		return err
	}

	//-----------------------------------------------------------------
	// 2) Render both documents
	//-----------------------------------------------------------------
	out, err := form.Render(rec)
	if err != nil {
		return fmt.Errorf("render %s emails: %w", form.Name, err)
	}

	submitter := rec.Get(form.EmailField)
	msgs := []mailer.Message{
		{
			To:      s.adminEmail,
			Subject: form.AdminSubject(rec),
			ReplyTo: submitter,
			HTML:    out.AdminHTML,
			Tag:     RoleAdmin,
		},
		{
			To:      submitter,
			Subject: form.AckSubject(rec),
			ReplyTo: s.adminEmail,
			HTML:    out.AckHTML,
			Tag:     RoleAcknowledgement,
		},
	}

	//-----------------------------------------------------------------
	// 3) Dispatch both, wait for both
	//-----------------------------------------------------------------
	if err := s.dispatchAll(ctx, form, msgs); err != nil {
		metrics.IncFormSubmission(form.Name, metrics.OutcomeDeliveryFailed)
		return utils.NewExternalServiceError(fmt.Errorf("%s submission: %w", form.Name, err))
	}

	fields := logrus.Fields{"submitted_at": s.now().UTC().Format(time.RFC3339)}
	for _, name := range form.LogFields {
		if rec.Has(name) {
			fields[name] = rec.Get(name)
		}
	}
	log.WithFields(fields).Info("submission delivered")
	metrics.IncFormSubmission(form.Name, metrics.OutcomeSuccess)
	return nil
}

func (s *submissionService) Ping(ctx context.Context) error {
	return s.dispatcher.Ping(ctx)
}

// ------------------------------------------------------------------
// internals
// ------------------------------------------------------------------

// dispatchAll sends every message concurrently and joins all failures. A
// failed send does not cancel its sibling; an email already handed to the
// provider cannot be recalled anyway.
func (s *submissionService) dispatchAll(ctx context.Context, form *forms.Form, msgs []mailer.Message) error {
	// Sends outlive a disconnected client; the transport timeout bounds them.
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	errs := make([]error, len(msgs))
	for i, msg := range msgs {
		i, msg := i, msg
		g.Go(func() error {
			errs[i] = s.dispatch(ctx, form, msg)
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *submissionService) dispatch(ctx context.Context, form *forms.Form, msg mailer.Message) error {
	provider := s.dispatcher.Provider()
	start := time.Now()
	err := s.dispatcher.Send(ctx, msg)
	metrics.ObserveDispatch(form.Name, msg.Tag, provider, err, time.Since(start))
	if err == nil {
		return nil
	}

	if !errors.Is(err, mailer.ErrDeliveryFailed) {
		err = &mailer.DeliveryError{Provider: provider, Tag: msg.Tag, To: msg.To, Err: err}
	}
	s.logger.WithFields(logrus.Fields{
		"form":     form.Name,
		"role":     msg.Tag,
		"provider": provider,
	}).WithError(err).Error("email dispatch failed")
	return err
}
