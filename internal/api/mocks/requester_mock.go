package mocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/example/ec-storefront/internal/api"
)

// MockRequester is a mock implementation of api.Requester for testing
type MockRequester struct {
	mu     sync.Mutex
	routes map[string]func(call Call) (*api.Response, error)

	// For tracking calls in tests
	Calls []Call
}

// Call records parameters passed to Do
type Call struct {
	Method string
	Path   string
	Body   any
	Params url.Values
}

// NewMockRequester creates a new MockRequester
func NewMockRequester() *MockRequester {
	return &MockRequester{
		routes: make(map[string]func(Call) (*api.Response, error)),
		Calls:  make([]Call, 0),
	}
}

func key(method, path string) string {
	return method + " " + path
}

// Respond registers a success body for method and path. The status
// sentinel is added when body does not carry one.
func (m *MockRequester) Respond(method, path string, body map[string]any) {
	m.Handle(method, path, func(Call) (*api.Response, error) {
		out := map[string]any{"status": api.StatusSuccess}
		for k, v := range body {
			out[k] = v
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return api.NewResponse(http.StatusOK, http.Header{}, raw)
	})
}

// Fail registers a failure for method and path
func (m *MockRequester) Fail(method, path string, err error) {
	m.Handle(method, path, func(Call) (*api.Response, error) {
		return nil, err
	})
}

// FailWith registers a backend failure carrying message
func (m *MockRequester) FailWith(method, path string, status int, message string) {
	m.Fail(method, path, &api.Error{Kind: api.KindBackend, Status: status, Message: message})
}

// Handle registers a custom responder
func (m *MockRequester) Handle(method, path string, fn func(call Call) (*api.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[key(method, path)] = fn
}

// Do looks up the registered responder. Unregistered routes fail with 404.
func (m *MockRequester) Do(ctx context.Context, method, path string, body any, params url.Values) (*api.Response, error) {
	call := Call{Method: method, Path: path, Body: body, Params: params}

	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	fn, ok := m.routes[key(method, path)]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &api.Error{Kind: api.KindTransport, Err: err}
	}
	if !ok {
		return nil, &api.Error{Kind: api.KindBackend, Status: http.StatusNotFound, Message: "route not found"}
	}
	return fn(call)
}

// CallCount returns how many times method and path were requested
func (m *MockRequester) CallCount(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// LastCall returns the most recent call, or the zero Call
func (m *MockRequester) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Call{}
	}
	return m.Calls[len(m.Calls)-1]
}

var _ api.Requester = (*MockRequester)(nil)
