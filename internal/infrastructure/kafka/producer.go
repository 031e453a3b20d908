package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Producer publishes journaled actions to a topic. Writes are asynchronous
// so a slow broker never delays a dispatch.
type Producer struct {
	writer *kafka.Writer
	log    logrus.FieldLogger
}

func NewProducer(brokers []string, topic string, log logrus.FieldLogger) *Producer {
	p := &Producer{log: log.WithField("component", "kafka")}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.log.WithError(err).WithField("messages", len(messages)).Warn("publish failed")
			}
		},
	}
	return p
}

// Publish encodes event as JSON and queues it under key
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

// Close flushes pending messages
func (p *Producer) Close() error {
	return p.writer.Close()
}
