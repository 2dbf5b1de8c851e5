package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poofware/submission-service/internal/dtos"
	"github.com/poofware/submission-service/internal/forms"
	"github.com/poofware/submission-service/internal/services"
	"github.com/poofware/submission-service/internal/utils"
	"github.com/poofware/submission-service/internal/validation"
)

type FormController struct {
	svc     services.SubmissionService
	devMode bool
}

func NewFormController(s services.SubmissionService, devMode bool) *FormController {
	return &FormController{svc: s, devMode: devMode}
}

// -----------------------------------------------------------------------------
// POST /api/submit-{quote,guard,company,fleet-worker}
// -----------------------------------------------------------------------------
func (c *FormController) Handler(form *forms.Form) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := decodeObject(r)
		if err != nil {
			utils.HandleAppError(w, r, err, c.devMode)
			return
		}

		err = c.svc.Submit(r.Context(), form, raw)
		if err != nil {
			var verrs *validation.Errors
			if errors.As(err, &verrs) {
				utils.RespondWithJSON(w, http.StatusBadRequest, dtos.ValidationErrorResponse{Errors: verrs.Fields})
				return
			}
			utils.HandleAppError(w, r, err, c.devMode)
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, dtos.SubmissionResponse{
			Message: form.SuccessMessage,
			Status:  dtos.StatusSuccess,
		})
	}
}

// -----------------------------------------------------------------------------
// shared helper
// -----------------------------------------------------------------------------

// decodeObject reads a single JSON object. Rejections are *utils.AppError
// values matching ErrInvalidPayload or ErrPayloadTooLarge.
func decodeObject(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return nil, utils.NewInvalidPayloadError(errors.New("empty body"))
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.NewPayloadTooLargeError(err)
		}
		return nil, utils.NewInvalidPayloadError(err)
	}
	if raw == nil {
		return nil, utils.NewInvalidPayloadError(errors.New("body is not a JSON object"))
	}
	if dec.More() {
		return nil, utils.NewInvalidPayloadError(errors.New("trailing data after JSON object"))
	}
	return raw, nil
}
