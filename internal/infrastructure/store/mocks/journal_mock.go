package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockJournal is a mock implementation of JournalInterface for testing
type MockJournal struct {
	mu       sync.RWMutex
	actions  []store.Action
	snapshot *store.Snapshot

	// For tracking calls in tests
	AppendCalls    []AppendCall
	AppendErr      error
	AppendCallback func(ctx context.Context, slice, actionType, requestID string, payload any) (*store.Action, error)

	SaveSnapshotCalls int
	SaveSnapshotErr   error

	GetActionsErr error
}

// AppendCall records parameters passed to Append
type AppendCall struct {
	Slice     string
	Type      string
	RequestID string
	Payload   any
}

// NewMockJournal creates a new MockJournal
func NewMockJournal() *MockJournal {
	return &MockJournal{
		AppendCalls: make([]AppendCall, 0),
	}
}

// Append stores an action in memory
func (m *MockJournal) Append(ctx context.Context, slice, actionType, requestID string, payload any) (*store.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{
		Slice:     slice,
		Type:      actionType,
		RequestID: requestID,
		Payload:   payload,
	})

	if m.AppendCallback != nil {
		return m.AppendCallback(ctx, slice, actionType, requestID, payload)
	}

	if m.AppendErr != nil {
		return nil, m.AppendErr
	}

	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	action := store.Action{
		ID:        uuid.New().String(),
		Slice:     slice,
		Type:      actionType,
		RequestID: requestID,
		Payload:   data,
		Timestamp: time.Now(),
		Version:   len(m.actions) + 1,
	}
	m.actions = append(m.actions, action)
	return &action, nil
}

func (m *MockJournal) GetAllActions() []store.Action {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Action, len(m.actions))
	copy(out, m.actions)
	return out
}

func (m *MockJournal) GetActionsFromVersion(ctx context.Context, version int) ([]store.Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetActionsErr != nil {
		return nil, m.GetActionsErr
	}

	var out []store.Action
	for _, a := range m.actions {
		if a.Version > version {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockJournal) GetSnapshot(ctx context.Context) (*store.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, nil
}

func (m *MockJournal) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveSnapshotCalls++
	if m.SaveSnapshotErr != nil {
		return m.SaveSnapshotErr
	}
	m.snapshot = snapshot
	return nil
}

// Types returns the recorded action types in order
func (m *MockJournal) Types() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.AppendCalls))
	for _, c := range m.AppendCalls {
		types = append(types, c.Type)
	}
	return types
}

// Reset clears all stored actions and recorded calls
func (m *MockJournal) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = nil
	m.snapshot = nil
	m.AppendCalls = make([]AppendCall, 0)
	m.AppendErr = nil
	m.AppendCallback = nil
	m.SaveSnapshotCalls = 0
	m.SaveSnapshotErr = nil
	m.GetActionsErr = nil
}

var _ store.JournalInterface = (*MockJournal)(nil)
