package middleware

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/poofware/submission-service/internal/metrics"
	"github.com/poofware/submission-service/internal/ratelimit"
	"github.com/poofware/submission-service/internal/utils"
)

// RateLimit enforces limiter per client IP on one route. Forwarding headers
// only count when sent by one of trusted. Store errors fail open: the
// request is logged and let through.
func RateLimit(limiter *ratelimit.SlidingWindow, route string, trusted utils.TrustedProxies, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trusted)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), route+":"+ip)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"route":      route,
					"request_id": utils.RequestIDFromContext(r.Context()),
				}).WithError(err).Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter().Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				metrics.IncRateLimitRejection(route)
				utils.HandleAppError(w, r, utils.NewRateLimitError(), false)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
