package dtos

import "github.com/poofware/submission-service/internal/validation"

const StatusSuccess = "success"

type SubmissionResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ValidationErrorResponse lists every violation in field-declaration order.
type ValidationErrorResponse struct {
	Errors []validation.FieldError `json:"errors"`
}
