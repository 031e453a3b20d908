package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/projection"
)

// Subscriber is called after every applied action
type Subscriber func(action store.Action, state projection.RootState)

// Store is the single mutation point of the client state. Dispatch is
// serialized; an action that fails to reduce or to journal changes nothing.
type Store struct {
	mu      sync.Mutex
	journal store.JournalInterface
	state   projection.RootState
	version int

	subMu  sync.Mutex
	subs   map[int]Subscriber
	nextID int

	log logrus.FieldLogger
}

func NewStore(journal store.JournalInterface, log logrus.FieldLogger) *Store {
	return &Store{
		journal: journal,
		state:   projection.Initial(),
		subs:    make(map[int]Subscriber),
		log:     log.WithField("component", "store"),
	}
}

// Dispatch reduces the action, journals it and notifies subscribers
func (s *Store) Dispatch(ctx context.Context, sliceName, actionType, requestID string, payload any) error {
	data, err := store.EncodePayload(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	next, err := projection.Apply(s.state, store.Action{
		Slice:     sliceName,
		Type:      actionType,
		RequestID: requestID,
		Payload:   data,
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("apply %s: %w", actionType, err)
	}

	action, err := s.journal.Append(ctx, sliceName, actionType, requestID, payload)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("journal %s: %w", actionType, err)
	}

	s.state = next
	s.version = action.Version
	if store.Due(action.Version) {
		s.saveSnapshot(ctx, action.Version, next)
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"type":       action.Type,
		"request_id": action.RequestID,
		"version":    action.Version,
	}).Debug("dispatched")

	s.notify(*action, next)
	return nil
}

func (s *Store) saveSnapshot(ctx context.Context, version int, state projection.RootState) {
	raw, err := json.Marshal(state)
	if err != nil {
		s.log.WithError(err).Error("marshal snapshot")
		return
	}
	snapshot := &store.Snapshot{Version: version, State: raw, CreatedAt: time.Now()}
	if err := s.journal.SaveSnapshot(ctx, snapshot); err != nil {
		s.log.WithError(err).WithField("version", version).Warn("save snapshot")
	}
}

// State returns the current root state
func (s *Store) State() projection.RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the journal version of the last applied action
func (s *Store) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Reset drops all state, as a full reload does
func (s *Store) Reset(ctx context.Context) error {
	return s.Dispatch(ctx, projection.SliceApp, projection.ActionReset, "", nil)
}

// Replay rebuilds the state from the latest snapshot and the actions after
// it. Requests that never settled leave no loading flag behind.
func (s *Store) Replay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := projection.Initial()
	from := 0

	snapshot, err := s.journal.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, &state); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		from = snapshot.Version
	}

	actions, err := s.journal.GetActionsFromVersion(ctx, from)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	version := from
	for _, action := range actions {
		state, err = projection.Apply(state, action)
		if err != nil {
			return fmt.Errorf("failed to apply action %d: %w", action.Version, err)
		}
		version = action.Version
	}

	s.state = projection.Rehydrated(state)
	s.version = version
	s.log.WithFields(logrus.Fields{"version": version, "from_snapshot": snapshot != nil}).Info("state replayed")
	return nil
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(action store.Action, state projection.RootState) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(action, state)
	}
}
