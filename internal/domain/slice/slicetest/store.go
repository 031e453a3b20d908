// Package slicetest provides a single-slice store for service tests.
package slicetest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
)

// Store journals every dispatched action and applies the ones addressed to
// its own slice. Actions for other slices are recorded only.
type Store[S any] struct {
	mu      sync.Mutex
	slice   string
	state   S
	reduce  func(S, store.Action) (S, error)
	Journal *mocks.MockJournal
}

func New[S any](sliceName string, initial S, reduce func(S, store.Action) (S, error)) *Store[S] {
	return &Store[S]{
		slice:   sliceName,
		state:   initial,
		reduce:  reduce,
		Journal: mocks.NewMockJournal(),
	}
}

func (s *Store[S]) Dispatch(ctx context.Context, sliceName, actionType, requestID string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, err := s.Journal.Append(ctx, sliceName, actionType, requestID, payload)
	if err != nil {
		return err
	}
	if sliceName != s.slice {
		return nil
	}
	next, err := s.reduce(s.state, *action)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Types returns every dispatched action type in order
func (s *Store[S]) Types() []string {
	return s.Journal.Types()
}

// Payloads returns the payloads of all actions of the given type
func (s *Store[S]) Payloads(actionType string) []json.RawMessage {
	var out []json.RawMessage
	for _, a := range s.Journal.GetAllActions() {
		if a.Type == actionType {
			out = append(out, a.Payload)
		}
	}
	return out
}
