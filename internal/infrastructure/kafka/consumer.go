package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/infrastructure/store"
)

var (
	ErrNoClientKey = errors.New("message has no client key")
	ErrEmptyAction = errors.New("message carries no action type")
)

// ActionHandler receives one journaled action and the client that produced it
type ActionHandler func(ctx context.Context, clientID string, action store.Action) error

// Consumer reads the action stream that journals publish, keyed by client id
type Consumer struct {
	reader *kafka.Reader
	slices map[string]bool
	log    logrus.FieldLogger
}

type ConsumerOption func(*Consumer)

// WithSlices keeps only actions addressed to the named slices
func WithSlices(names ...string) ConsumerOption {
	return func(c *Consumer) {
		for _, name := range names {
			if name == "" {
				continue
			}
			if c.slices == nil {
				c.slices = make(map[string]bool)
			}
			c.slices[name] = true
		}
	}
}

func NewConsumer(brokers []string, topic, groupID string, log logrus.FieldLogger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{log: log.WithField("component", "kafka")}
	for _, opt := range opts {
		opt(c)
	}
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return c
}

// Consume reads messages until ctx is cancelled. Undecodable messages and
// handler errors are logged and the message is skipped.
func (c *Consumer) Consume(ctx context.Context, handler ActionHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.WithError(err).Error("read message")
			continue
		}

		if err := c.handle(ctx, msg, handler); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Error("handle message")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message, handler ActionHandler) error {
	clientID, action, err := decodeMessage(msg)
	if err != nil {
		return err
	}
	if c.slices != nil && !c.slices[action.Slice] {
		return nil
	}
	return handler(ctx, clientID, action)
}

func decodeMessage(msg kafka.Message) (string, store.Action, error) {
	var action store.Action
	if len(msg.Key) == 0 {
		return "", action, ErrNoClientKey
	}
	if err := json.Unmarshal(msg.Value, &action); err != nil {
		return "", action, fmt.Errorf("failed to decode action: %w", err)
	}
	if action.Type == "" {
		return "", action, ErrEmptyAction
	}
	return string(msg.Key), action, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
