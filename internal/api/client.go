package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/ec-storefront/internal/api/middleware"
)

// StatusSuccess is the body-level sentinel every success response carries
const StatusSuccess = "success"

const maxBodyBytes = 4 << 20

// Requester is the contract the slices depend on
type Requester interface {
	Do(ctx context.Context, method, path string, body any, params url.Values) (*Response, error)
}

// Response is a success body split into its top-level fields
type Response struct {
	StatusCode int
	Header     http.Header
	raw        []byte
	fields     map[string]json.RawMessage
}

// NewResponse splits a JSON object body into a Response
func NewResponse(status int, header http.Header, body []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return &Response{StatusCode: status, Header: header, raw: body, fields: fields}, nil
}

// Decode unmarshals the whole body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return &Error{Kind: KindDecode, Status: r.StatusCode, Err: err}
	}
	return nil
}

// Field unmarshals one top-level field of the body into v
func (r *Response) Field(name string, v any) error {
	raw, ok := r.fields[name]
	if !ok {
		return &Error{Kind: KindDecode, Status: r.StatusCode, Err: fmt.Errorf("response has no %q field", name)}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Kind: KindDecode, Status: r.StatusCode, Err: fmt.Errorf("field %q: %w", name, err)}
	}
	return nil
}

// Has reports whether the body carries the named field
func (r *Response) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Client sends requests to the storefront REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
	tracing    bool
	timeout    time.Duration
	base       http.RoundTripper
}

type Option func(*Client)

// WithLogger sets the logger used for request logging
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransport replaces the innermost transport (tests use this)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithTimeout sets the per-request timeout of the underlying http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithTracing wraps the transport with OpenTelemetry instrumentation
func WithTracing() Option {
	return func(c *Client) { c.tracing = true }
}

// NewClient creates a client for baseURL. The bearer credential is read from
// tokens on every request, so a login or logout takes effect immediately.
func NewClient(baseURL string, tokens middleware.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logrus.StandardLogger(),
		timeout: 10 * time.Second,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "api")

	base := c.base
	if c.tracing {
		base = otelhttp.NewTransport(base)
	}
	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: middleware.Chain(base,
			middleware.RequestID(),
			middleware.Bearer(tokens),
			middleware.Logging(c.log),
		),
	}
	return c
}

// Do sends one request. Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values) (*Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Message: extractMessage(fields)}
	}

	out, err := NewResponse(resp.StatusCode, resp.Header, raw)
	if err != nil {
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Err: fmt.Errorf("response is not a JSON object: %w", err)}
	}

	var status string
	if rawStatus, ok := out.fields["status"]; ok {
		_ = json.Unmarshal(rawStatus, &status)
	}
	if status != StatusSuccess {
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Message: extractMessage(out.fields)}
	}

	return out, nil
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, params)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}
