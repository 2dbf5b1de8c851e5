package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poofware/submission-service/internal/forms"
	"github.com/poofware/submission-service/internal/mailer"
	"github.com/poofware/submission-service/internal/mailer/mailertest"
	"github.com/poofware/submission-service/internal/utils"
	"github.com/poofware/submission-service/internal/validation"
)

const adminEmail = "admin@guards.example"

func newService(t *testing.T) (*submissionService, *mailertest.Recorder, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	rec := mailertest.New()
	svc := NewSubmissionService(rec, adminEmail, logger).(*submissionService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, rec, hook
}

func quotePayload() map[string]any {
	return map[string]any{
		"name":    "Jo Smith",
		"email":   " Jo@Example.com ",
		"phone":   "555-123-4567",
		"details": "Need a quote for weekend coverage",
	}
}

func TestSubmitSendsBothEmails(t *testing.T) {
	svc, rec, hook := newService(t)

	require.NoError(t, svc.Submit(context.Background(), forms.Quote, quotePayload()))
	require.Len(t, rec.Sent(), 2)

	admin, ok := rec.ByTag(RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, adminEmail, admin.To)
	assert.Equal(t, "jo@example.com", admin.ReplyTo)
	assert.Equal(t, "New Quote Request from Jo Smith", admin.Subject)
	assert.Contains(t, admin.HTML, "jo@example.com")

	ack, ok := rec.ByTag(RoleAcknowledgement)
	require.True(t, ok)
	assert.Equal(t, "jo@example.com", ack.To)
	assert.Equal(t, adminEmail, ack.ReplyTo)
	assert.Contains(t, ack.HTML, "Hello Jo Smith")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "quote", entry.Data["form"])
	assert.Equal(t, "Jo Smith", entry.Data["name"])
	assert.Equal(t, "2026-03-01T12:00:00Z", entry.Data["submitted_at"])
	assert.NotContains(t, entry.Data, "details")
	assert.NotContains(t, entry.Data, "company")
}

func TestSubmitInvalidSendsNothing(t *testing.T) {
	svc, rec, hook := newService(t)

	err := svc.Submit(context.Background(), forms.Quote, map[string]any{
		"name": "J", "email": "not-an-email", "phone": "123", "details": "",
	})

	var verrs *validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("name"))
	assert.True(t, verrs.Has("email"))
	assert.True(t, verrs.Has("phone"))
	assert.True(t, verrs.Has("details"))
	assert.Empty(t, rec.Sent())

	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
	}
}

func TestSubmitFailsWhenEitherSendFails(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleAcknowledgement} {
		t.Run(role, func(t *testing.T) {
			svc, rec, hook := newService(t)
			cause := errors.New("connection refused")
			rec.FailTags[role] = cause

			err := svc.Submit(context.Background(), forms.Quote, quotePayload())
			require.Error(t, err)
			assert.ErrorIs(t, err, mailer.ErrDeliveryFailed)
			assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)
			assert.ErrorIs(t, err, cause)

			var appErr *utils.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)

			var derr *mailer.DeliveryError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, role, derr.Tag)

			// both attempts are still made
			assert.Len(t, rec.Sent(), 2)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.ErrorLevel, entry.Level)
			assert.Equal(t, role, entry.Data["role"])
		})
	}
}

func TestSubmitJoinsBothFailures(t *testing.T) {
	svc, rec, _ := newService(t)
	adminErr := errors.New("admin mailbox unavailable")
	ackErr := errors.New("recipient rejected")
	rec.FailTags[RoleAdmin] = adminErr
	rec.FailTags[RoleAcknowledgement] = ackErr

	err := svc.Submit(context.Background(), forms.Quote, quotePayload())
	assert.ErrorIs(t, err, adminErr)
	assert.ErrorIs(t, err, ackErr)
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	svc, rec, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Submit(ctx, forms.Quote, quotePayload()))
	assert.Len(t, rec.Sent(), 2)
}

func TestSubmitFleetWorkerUsesCategoryLabel(t *testing.T) {
	svc, rec, _ := newService(t)

	err := svc.Submit(context.Background(), forms.FleetWorker, map[string]any{
		"firstName": "Alex", "lastName": "Kim", "email": "Alex@Example.com", "phone": "647 555 0123",
		"city": "Brampton", "specialtyCategory": "A", "specialtySubcategory": "Dispatch lead",
		"yearsOfExperience": "8", "details": "Ran dispatch for a 40-truck fleet.",
	})
	require.NoError(t, err)

	admin, ok := rec.ByTag(RoleAdmin)
	require.True(t, ok)
	assert.Contains(t, admin.HTML, "Management & Operations")
	assert.Equal(t, "alex@example.com", admin.ReplyTo)
}

func TestPingDelegatesToDispatcher(t *testing.T) {
	svc, rec, _ := newService(t)
	require.NoError(t, svc.Ping(context.Background()))

	rec.PingErr = errors.New("missing credentials")
	assert.ErrorIs(t, svc.Ping(context.Background()), rec.PingErr)
}
