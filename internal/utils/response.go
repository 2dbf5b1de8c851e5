package utils

import (
	"encoding/json"
	"net/http"
)

const RequestIDHeader = "X-Request-ID"

// Public messages for errors raised outside the form pipeline.
const (
	PayloadTooLargeMessage  = "Request body too large"
	InvalidJSONMessage      = "Invalid JSON payload"
	RouteNotFoundMessage    = "Route not found"
	MethodNotAllowedMessage = "Method not allowed"
	TooManyRequestsMessage  = "Too many requests, please try again later."
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithError writes {"error": message} with the given status.
func RespondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{Error: message})
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
