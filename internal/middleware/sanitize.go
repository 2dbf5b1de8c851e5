package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strconv"

	"github.com/poofware/submission-service/internal/utils"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	eventAttrRegex   = regexp.MustCompile(`(?i)\bon[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]*)`)
	htmlTagRegex     = regexp.MustCompile(`</?[a-zA-Z!][^>]*>`)
	jsProtocolRegex  = regexp.MustCompile(`(?i)javascript\s*:`)
)

// StripActiveContent removes script blocks, inline event handlers, any
// remaining HTML tags and javascript: URIs from s.
func StripActiveContent(s string) string {
	s = scriptBlockRegex.ReplaceAllString(s, "")
	s = eventAttrRegex.ReplaceAllString(s, "")
	s = htmlTagRegex.ReplaceAllString(s, "")
	return jsProtocolRegex.ReplaceAllString(s, "")
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return StripActiveContent(t)
	case map[string]any:
		for k, item := range t {
			t[k] = sanitizeValue(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = sanitizeValue(item)
		}
		return t
	default:
		return v
	}
}

// Sanitize rewrites JSON request bodies with every string value passed
// through StripActiveContent. Bodies that are not JSON, or do not parse,
// are forwarded untouched for the handler to reject.
func Sanitize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || !isJSON(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.HandleAppError(w, r, utils.NewPayloadTooLargeError(err), false)
				return
			}
			utils.HandleAppError(w, r, utils.NewInvalidPayloadError(err), false)
			return
		}

		body := raw
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var payload any
		if dec.Decode(&payload) == nil && !dec.More() {
			if clean, err := json.Marshal(sanitizeValue(payload)); err == nil {
				body = clean
			}
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		r.Header.Set("Content-Length", strconv.Itoa(len(body)))
		next.ServeHTTP(w, r)
	})
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && (mt == "application/json" || mt == "text/plain")
}
