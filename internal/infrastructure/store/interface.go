package store

import (
	"context"

	"github.com/sirupsen/logrus"
)

// JournalInterface defines the interface for action journals
type JournalInterface interface {
	Append(ctx context.Context, slice, actionType, requestID string, payload any) (*Action, error)
	GetActionsFromVersion(ctx context.Context, version int) ([]Action, error)
	GetSnapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// Publisher forwards journaled actions to a stream
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type JournalOption func(*journalConfig)

type journalConfig struct {
	log logrus.FieldLogger
}

// WithLogger sets the logger that records publish failures
func WithLogger(log logrus.FieldLogger) JournalOption {
	return func(c *journalConfig) { c.log = log }
}

func newJournalConfig(opts []JournalOption) journalConfig {
	cfg := journalConfig{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.log = cfg.log.WithField("component", "journal")
	return cfg
}

// publish forwards a stored action. The action is already part of the
// journal, so a failure is logged and never reported to the dispatcher.
func publish(ctx context.Context, publisher Publisher, clientID string, action Action, log logrus.FieldLogger) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, clientID, action); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"client":  clientID,
			"type":    action.Type,
			"version": action.Version,
		}).Warn("publish failed")
	}
}
