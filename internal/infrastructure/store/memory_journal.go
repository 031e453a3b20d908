package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MemoryJournal keeps the action log of one client in memory
type MemoryJournal struct {
	mu        sync.RWMutex
	actions   []Action
	snapshot  *Snapshot
	clientID  string
	publisher Publisher
	log       logrus.FieldLogger
}

// NewMemoryJournal creates a journal whose published messages are keyed by
// clientID
func NewMemoryJournal(clientID string, publisher Publisher, opts ...JournalOption) *MemoryJournal {
	cfg := newJournalConfig(opts)
	return &MemoryJournal{clientID: clientID, publisher: publisher, log: cfg.log}
}

// Append stores an action and publishes it when a publisher is configured
func (j *MemoryJournal) Append(ctx context.Context, slice, actionType, requestID string, payload any) (*Action, error) {
	data, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	j.mu.Lock()
	action := Action{
		ID:        uuid.New().String(),
		Slice:     slice,
		Type:      actionType,
		RequestID: requestID,
		Payload:   data,
		Timestamp: time.Now(),
		Version:   len(j.actions) + 1,
	}
	j.actions = append(j.actions, action)
	j.mu.Unlock()

	publish(ctx, j.publisher, j.clientID, action, j.log)
	return &action, nil
}

// GetAllActions returns all actions in version order
func (j *MemoryJournal) GetAllActions() []Action {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Action, len(j.actions))
	copy(out, j.actions)
	return out
}

// GetActionsFromVersion returns the actions after version
func (j *MemoryJournal) GetActionsFromVersion(ctx context.Context, version int) ([]Action, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if version < 0 {
		version = 0
	}
	if version >= len(j.actions) {
		return nil, nil
	}
	out := make([]Action, len(j.actions)-version)
	copy(out, j.actions[version:])
	return out, nil
}

func (j *MemoryJournal) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.snapshot == nil {
		return nil, nil
	}
	s := *j.snapshot
	return &s, nil
}

func (j *MemoryJournal) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := *snapshot
	j.snapshot = &s
	return nil
}
