// Package projectiontest provides a root store for tests of code that spans
// several slices.
package projectiontest

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/projection"
)

// Store folds every dispatched action into a RootState without a journal
type Store struct {
	mu    sync.Mutex
	state projection.RootState
	types []string
}

func New() *Store {
	return &Store{state: projection.Initial()}
}

func (s *Store) Dispatch(ctx context.Context, sliceName, actionType, requestID string, payload any) error {
	data, err := store.EncodePayload(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := projection.Apply(s.state, store.Action{
		Slice:     sliceName,
		Type:      actionType,
		RequestID: requestID,
		Payload:   data,
	})
	if err != nil {
		return err
	}
	s.state = next
	s.types = append(s.types, actionType)
	return nil
}

func (s *Store) State() projection.RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Types returns every applied action type in order
func (s *Store) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Count returns how many actions of the given type were applied
func (s *Store) Count(actionType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.types {
		if t == actionType {
			n++
		}
	}
	return n
}
