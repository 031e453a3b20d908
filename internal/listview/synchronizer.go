// Package listview keeps a list page's search and pagination state in step
// with the navigation history. The URL is the source of truth: local edits
// are pushed as a new location and the fetch happens when that location
// becomes current.
package listview

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/history"
	"github.com/example/ec-storefront/internal/search"
)

var ErrNotMounted = errors.New("list view is not mounted")

// Navigator is the part of the history a list view needs
type Navigator interface {
	Current() history.Location
	Push(raw string)
	Listen(fn history.Listener) func()
}

// Fetcher loads the list for q
type Fetcher func(ctx context.Context, q search.Query) error

type Synchronizer struct {
	nav   Navigator
	path  string
	field string
	fetch Fetcher
	focus func()
	log   logrus.FieldLogger

	mu             sync.Mutex
	ctx            context.Context
	mounted        bool
	unlisten       func()
	query          search.Query
	keyword        string
	initialLoading bool
	lastErr        error
}

type Option func(*Synchronizer)

// WithFocus sets the callback that returns focus to the search box
func WithFocus(fn func()) Option {
	return func(s *Synchronizer) { s.focus = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Synchronizer) { s.log = log }
}

// New creates a synchronizer for the view at path whose search box filters
// on field
func New(nav Navigator, path, field string, fetch Fetcher, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		nav:            nav,
		path:           path,
		field:          field,
		fetch:          fetch,
		focus:          func() {},
		log:            logrus.StandardLogger(),
		query:          search.New(1),
		initialLoading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "listview", "path": path})
	return s
}

// Mount starts following the history and loads the list for the current
// location
func (s *Synchronizer) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.ctx = ctx
	s.initialLoading = true
	s.mu.Unlock()

	unlisten := s.nav.Listen(s.onLocation)
	s.mu.Lock()
	s.unlisten = unlisten
	s.mu.Unlock()

	loc := s.nav.Current()
	if loc.Path != s.path {
		loc = history.Location{Path: s.path}
	}
	return s.load(ctx, loc.Query)
}

// Unmount stops following the history. Requests already in flight still
// settle into the store.
func (s *Synchronizer) Unmount() {
	s.mu.Lock()
	unlisten := s.unlisten
	s.unlisten = nil
	s.mounted = false
	s.mu.Unlock()

	if unlisten != nil {
		unlisten()
	}
}

func (s *Synchronizer) onLocation(loc history.Location, kind history.Kind) {
	if loc.Path != s.path {
		return
	}
	s.mu.Lock()
	ctx := s.ctx
	mounted := s.mounted
	s.mu.Unlock()
	if !mounted {
		return
	}

	err := s.load(ctx, loc.Query)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).WithField("kind", kind.String()).Debug("list fetch failed")
	}
}

// load adopts the query in raw and fetches with exactly those values
func (s *Synchronizer) load(ctx context.Context, raw string) error {
	q := search.Parse(raw)

	s.mu.Lock()
	s.query = q
	s.keyword = q.Get(s.field)
	s.mu.Unlock()

	err := s.fetch(ctx, q)

	s.mu.Lock()
	s.initialLoading = false
	s.mu.Unlock()
	return err
}

// SetQuery makes q the view's query. A different URL is pushed and loaded
// through the history; the same URL is re-fetched without a new entry.
func (s *Synchronizer) SetQuery(ctx context.Context, q search.Query) error {
	s.mu.Lock()
	mounted := s.mounted
	s.lastErr = nil
	s.mu.Unlock()
	if !mounted {
		return ErrNotMounted
	}

	target := history.Location{Path: s.path, Query: q.Encode()}
	if target == s.nav.Current() {
		return s.load(ctx, target.Query)
	}

	s.nav.Push(target.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Search applies the keyword typed in the search box from page 1. An empty
// keyword removes the filter.
func (s *Synchronizer) Search(ctx context.Context, keyword string) error {
	s.mu.Lock()
	s.keyword = keyword
	q := s.query.With(s.field, keyword).WithPage(1)
	s.mu.Unlock()
	return s.SetQuery(ctx, q)
}

// SetKeyword updates the search box text without searching
func (s *Synchronizer) SetKeyword(keyword string) {
	s.mu.Lock()
	s.keyword = keyword
	s.mu.Unlock()
}

// Clear removes the filter, returns to page 1 and gives focus back to the
// search box
func (s *Synchronizer) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.keyword = ""
	q := s.query.Without(s.field).WithPage(1)
	s.mu.Unlock()

	err := s.SetQuery(ctx, q)
	s.focus()
	return err
}

// SelectPage handles a click on the zero-based pagination widget
func (s *Synchronizer) SelectPage(ctx context.Context, index int) error {
	s.mu.Lock()
	q := s.query.WithPage(search.ToPage(index))
	s.mu.Unlock()
	return s.SetQuery(ctx, q)
}

// Refresh reloads the current query
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.SetQuery(ctx, s.Query())
}

func (s *Synchronizer) Query() search.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SelectedIndex is the zero-based index for the pagination widget
func (s *Synchronizer) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return search.ToIndex(s.query.Page)
}

func (s *Synchronizer) Keyword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

// InitialLoading is true until the first fetch after Mount settles
func (s *Synchronizer) InitialLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialLoading
}

func (s *Synchronizer) Field() string {
	return s.field
}
