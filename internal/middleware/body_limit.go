package middleware

import (
	"net/http"

	"github.com/poofware/submission-service/internal/utils"
)

// BodyLimit caps request bodies at limit bytes. A declared Content-Length
// above the cap is rejected up front; otherwise reads past the cap fail with
// *http.MaxBytesError, which the body consumers map to 413.
func BodyLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				utils.HandleAppError(w, r, utils.NewPayloadTooLargeError(nil), false)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
