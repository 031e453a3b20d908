package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport records the last request it was asked to send
type captureTransport struct {
	last *http.Request
}

func (c *captureTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.last = r
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Header: http.Header{}}, nil
}

func send(t *testing.T, rt http.RoundTripper, req *http.Request) {
	t.Helper()
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
}

// ============================================
// Bearer Tests
// ============================================

func TestBearer_AttachesToken(t *testing.T) {
	capture := &captureTransport{}
	rt := Chain(capture, Bearer(StaticToken("abc.def.ghi")))

	req := httptest.NewRequest(http.MethodGet, "http://shop.test/cart", nil)
	send(t, rt, req)

	require.NotNil(t, capture.last)
	assert.Equal(t, "Bearer abc.def.ghi", capture.last.Header.Get("Authorization"))
	// The caller's request is left untouched
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBearer_NoTokenNoHeader(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
	}{
		{"empty token", StaticToken("")},
		{"nil source", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureTransport{}
			rt := Chain(capture, Bearer(tt.tokens))

			send(t, rt, httptest.NewRequest(http.MethodGet, "http://shop.test/product", nil))

			assert.Empty(t, capture.last.Header.Get("Authorization"))
		})
	}
}

// ============================================
// RequestID Tests
// ============================================

func TestRequestID_SetsHeader(t *testing.T) {
	capture := &captureTransport{}
	rt := Chain(capture, RequestID())

	send(t, rt, httptest.NewRequest(http.MethodGet, "http://shop.test/product", nil))
	first := capture.last.Header.Get(RequestIDHeader)
	send(t, rt, httptest.NewRequest(http.MethodGet, "http://shop.test/product", nil))
	second := capture.last.Header.Get(RequestIDHeader)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestRequestID_KeepsCallerValue(t *testing.T) {
	capture := &captureTransport{}
	rt := Chain(capture, RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://shop.test/product", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	send(t, rt, req)

	assert.Equal(t, "fixed-id", capture.last.Header.Get(RequestIDHeader))
}

// ============================================
// Chain / Logging Tests
// ============================================

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&captureTransport{}, mark("first"), mark("second"), mark("third"))
	send(t, rt, httptest.NewRequest(http.MethodGet, "http://shop.test/", nil))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestLogging_RecordsRequest(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	rt := Chain(&captureTransport{}, Logging(logger))

	send(t, rt, httptest.NewRequest(http.MethodGet, "http://shop.test/cart/qty", nil))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "/cart/qty", hook.LastEntry().Data["path"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

// ============================================
// ExtractToken Tests
// ============================================

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		cookie   string
		expected string
	}{
		{"bearer header", "Bearer tok-1", "", "tok-1"},
		{"cookie fallback", "", "tok-2", "tok-2"},
		{"header wins over cookie", "Bearer tok-3", "tok-4", "tok-3"},
		{"non-bearer scheme", "Basic dXNlcg==", "", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			assert.Equal(t, tt.expected, ExtractToken(req))
		})
	}
}
