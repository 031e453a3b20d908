// Package history is an in-process navigation history with the semantics
// of a browser: push, replace, back and forward, plus a full reload that
// drops all in-memory application state.
package history

import (
	"slices"
	"strings"
	"sync"
)

// Kind tells listeners how the location changed
type Kind int

const (
	Push Kind = iota + 1
	Replace
	Pop
	Reload
)

func (k Kind) String() string {
	switch k {
	case Push:
		return "push"
	case Replace:
		return "replace"
	case Pop:
		return "pop"
	case Reload:
		return "reload"
	}
	return "unknown"
}

// Location is a path plus its raw query string
type Location struct {
	Path  string
	Query string
}

// ParseLocation splits "/admin/product?page=2" into path and query
func ParseLocation(raw string) Location {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	return Location{Path: path, Query: query}
}

func (l Location) String() string {
	if l.Query == "" {
		return l.Path
	}
	return l.Path + "?" + l.Query
}

type Listener func(loc Location, kind Kind)

type History struct {
	mu        sync.Mutex
	entries   []Location
	index     int
	listeners map[int]Listener
	nextID    int
	onReload  []func()
}

func New(initial string) *History {
	return &History{
		entries:   []Location{ParseLocation(initial)},
		listeners: make(map[int]Listener),
	}
}

// Current returns the active location
func (h *History) Current() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Push adds a new entry after the current one and drops any forward entries
func (h *History) Push(raw string) {
	loc := ParseLocation(raw)
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index++
	h.mu.Unlock()
	h.notify(loc, Push)
}

// Replace swaps the current entry
func (h *History) Replace(raw string) {
	loc := ParseLocation(raw)
	h.mu.Lock()
	h.entries[h.index] = loc
	h.mu.Unlock()
	h.notify(loc, Replace)
}

// Back moves one entry back. It reports false at the first entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (h *History) Forward() bool {
	return h.move(1)
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.index + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = next
	loc := h.entries[next]
	h.mu.Unlock()
	h.notify(loc, Pop)
	return true
}

// Reload runs the reload hooks, which reset in-memory state, and then
// navigates to raw.
func (h *History) Reload(raw string) {
	h.mu.Lock()
	hooks := make([]func(), len(h.onReload))
	copy(hooks, h.onReload)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	loc := ParseLocation(raw)
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index++
	h.mu.Unlock()
	h.notify(loc, Reload)
}

// OnReload registers a hook run at the start of every Reload
func (h *History) OnReload(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, fn)
}

// Listen registers fn for every location change and returns a function
// that removes it
func (h *History) Listen(fn Listener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *History) notify(loc Location, kind Kind) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	// Registration order; listeners may unsubscribe while we iterate.
	slices.Sort(ids)
	for _, id := range ids {
		h.mu.Lock()
		fn, ok := h.listeners[id]
		h.mu.Unlock()
		if ok {
			fn(loc, kind)
		}
	}
}
