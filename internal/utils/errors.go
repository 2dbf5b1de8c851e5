package utils

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Domain-level errors shared by middleware, services and controllers.
var (
	ErrInvalidPayload  = errors.New("invalid_payload")
	ErrPayloadTooLarge = errors.New("payload_too_large")

	// For rate limiting
	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")

	// For external service failures (SMTP, SendGrid, Postmark)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

const GenericServerErrorMessage = "Internal server error"

// AppError carries an HTTP status and a public message from services to controllers.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewInvalidPayloadError(cause error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: InvalidJSONMessage, Err: wrap(ErrInvalidPayload, cause)}
}

func NewPayloadTooLargeError(cause error) *AppError {
	return &AppError{StatusCode: http.StatusRequestEntityTooLarge, Message: PayloadTooLargeMessage, Err: wrap(ErrPayloadTooLarge, cause)}
}

func NewRateLimitError() *AppError {
	return &AppError{StatusCode: http.StatusTooManyRequests, Message: TooManyRequestsMessage, Err: ErrRateLimitExceeded}
}

// NewExternalServiceError reports a failed upstream call. The cause stays
// reachable through errors.Is / errors.As.
func NewExternalServiceError(cause error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: GenericServerErrorMessage, Err: wrap(ErrExternalServiceFailure, cause)}
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}

// HandleAppError is the centralized handler for errors that escape a
// controller. Client errors (4xx) carrying an AppError keep their public
// message and are logged at warn; everything else is logged at error and
// answered generically unless devMode is set, in which case the literal
// error text is returned.
func HandleAppError(w http.ResponseWriter, r *http.Request, err error, devMode bool) {
	status := http.StatusInternalServerError
	public := GenericServerErrorMessage

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode != 0 {
			status = appErr.StatusCode
		}
		if status < http.StatusInternalServerError && appErr.Message != "" {
			public = appErr.Message
		}
	}

	fields := logrus.Fields{
		"status": status,
		"error":  err.Error(),
	}
	if r != nil {
		fields["path"] = r.URL.Path
		fields["method"] = r.Method
		fields["request_id"] = RequestIDFromContext(r.Context())
	}

	if status < http.StatusInternalServerError {
		Logger.WithFields(fields).Warn("request rejected")
	} else {
		Logger.WithFields(fields).Error("request failed")
		if devMode {
			public = err.Error()
		}
	}
	RespondWithError(w, status, public)
}
