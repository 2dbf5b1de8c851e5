package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "2001:db8::/32"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		trusted TrustedProxies
		headers map[string]string
		remote  string
		want    string
	}{
		{"headers ignored without proxies", nil, map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "203.0.113.2"}, "192.0.2.5:5555", "192.0.2.5"},
		{"headers ignored from untrusted peer", proxies, map[string]string{"X-Forwarded-For": "203.0.113.1", "CF-Connecting-IP": "203.0.113.3"}, "192.0.2.5:5555", "192.0.2.5"},
		{"right-most untrusted hop", proxies, map[string]string{"X-Forwarded-For": "198.51.100.9, 203.0.113.1, 10.0.0.7"}, "10.0.0.2:1234", "203.0.113.1"},
		{"unparsable hop stops the walk", proxies, map[string]string{"X-Forwarded-For": "203.0.113.1, garbage, 10.0.0.7"}, "10.0.0.2:1234", "10.0.0.7"},
		{"all hops trusted", proxies, map[string]string{"X-Forwarded-For": "10.0.0.8, 10.0.0.7"}, "10.0.0.2:1234", "10.0.0.8"},
		{"cloudflare", proxies, map[string]string{"CF-Connecting-IP": "198.51.100.2"}, "10.0.0.2:1234", "198.51.100.2"},
		{"real ip", proxies, map[string]string{"X-Real-IP": "198.51.100.3"}, "10.0.0.2:1234", "198.51.100.3"},
		{"forwarded", proxies, map[string]string{"Forwarded": `for=198.51.100.8;proto=https, for="198.51.100.4:443"`}, "10.0.0.2:1234", "198.51.100.4"},
		{"forwarded ipv6", proxies, map[string]string{"Forwarded": `for="[2001:db9::5]:443"`}, "10.0.0.2:1234", "2001:db9::5"},
		{"trusted peer without headers", proxies, nil, "10.0.0.2:1234", "10.0.0.2"},
		{"remote addr", nil, nil, "192.0.2.5:5555", "192.0.2.5"},
		{"ipv6 remote addr", nil, nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing parses", nil, nil, "pipe", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{" 192.0.2.7 ", "", "10.0.0.0/8", "::1"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)
	assert.True(t, proxies.Contains(net.ParseIP("192.0.2.7")))
	assert.False(t, proxies.Contains(net.ParseIP("192.0.2.8")))
	assert.True(t, proxies.Contains(net.ParseIP("10.255.0.1")))
	assert.True(t, proxies.Contains(net.ParseIP("::1")))

	_, err = ParseTrustedProxies([]string{"10.0.0.0/40"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestHandleAppError(t *testing.T) {
	Logger.SetLevel(logrus.PanicLevel)
	cause := fmt.Errorf("send: %w", errors.New("dial tcp: connection refused"))

	tests := []struct {
		name       string
		err        error
		devMode    bool
		wantStatus int
		wantBody   string
	}{
		{"generic in production", cause, false, http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"literal in development", cause, true, http.StatusInternalServerError, `{"error":"send: dial tcp: connection refused"}`},
		{
			"client app error keeps its message",
			&AppError{StatusCode: http.StatusBadRequest, Message: "Bad field", Err: ErrInvalidPayload},
			false, http.StatusBadRequest, `{"error":"Bad field"}`,
		},
		{
			"client app error keeps its message in development",
			NewInvalidPayloadError(errors.New("unexpected EOF")),
			true, http.StatusBadRequest, `{"error":"Invalid JSON payload"}`,
		},
		{
			"rate limit",
			NewRateLimitError(),
			false, http.StatusTooManyRequests, `{"error":"Too many requests, please try again later."}`,
		},
		{
			"external failure is redacted",
			NewExternalServiceError(cause),
			false, http.StatusInternalServerError, `{"error":"Internal server error"}`,
		},
		{
			"server app error message is redacted",
			&AppError{StatusCode: http.StatusBadGateway, Message: "upstream detail", Err: ErrExternalServiceFailure},
			false, http.StatusBadGateway, `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/submit-quote", nil)
			HandleAppError(rr, r, tt.err, tt.devMode)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := &AppError{StatusCode: http.StatusTooManyRequests, Err: ErrRateLimitExceeded}
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Equal(t, ErrRateLimitExceeded.Error(), err.Error())

	assert.Equal(t, "plain", (&AppError{Message: "plain"}).Error())

	cause := errors.New("dial tcp: i/o timeout")
	ext := NewExternalServiceError(cause)
	assert.ErrorIs(t, ext, ErrExternalServiceFailure)
	assert.ErrorIs(t, ext, cause)

	assert.ErrorIs(t, NewPayloadTooLargeError(nil), ErrPayloadTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, NewPayloadTooLargeError(nil).StatusCode)
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "rid-9", RequestIDFromContext(WithRequestID(context.Background(), "rid-9")))
}
