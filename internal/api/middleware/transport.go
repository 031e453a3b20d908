package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the current bearer credential, or "" when logged out
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Middleware decorates an outbound transport
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base so that the first middleware sees the request first
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// Bearer attaches "Authorization: Bearer <token>" when tokens has a credential
func Bearer(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if tokens == nil {
				return next.RoundTrip(r)
			}
			token := tokens.Token()
			if token == "" {
				return next.RoundTrip(r)
			}
			// RoundTrippers must not modify the caller's request
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// RequestID sets a fresh X-Request-ID unless the caller already set one
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, uuid.New().String())
			return next.RoundTrip(r)
		})
	}
}

// Logging logs every request at debug level and transport failures at warn
func Logging(log logrus.FieldLogger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			entry := log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": r.Header.Get(RequestIDHeader),
			})
			resp, err := next.RoundTrip(r)
			if err != nil {
				entry.WithError(err).Warn("request failed")
				return nil, err
			}
			entry.WithFields(logrus.Fields{
				"status":   resp.StatusCode,
				"duration": time.Since(start),
			}).Debug("request completed")
			return resp, nil
		})
	}
}

// ExtractToken extracts the bearer credential from a request, falling back
// to the access_token cookie
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
