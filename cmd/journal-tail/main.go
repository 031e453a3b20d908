package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := newLogger(getEnv("LOG_LEVEL", "info"))

	// Configuration from environment variables
	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "storefront-actions")
	consumerGroup := getEnv("KAFKA_CONSUMER_GROUP", "journal-tail")
	slices := strings.Split(os.Getenv("JOURNAL_SLICES"), ",")

	log.WithFields(logrus.Fields{
		"brokers": kafkaBrokers,
		"topic":   kafkaTopic,
		"group":   consumerGroup,
		"slices":  slices,
	}).Info("journal tail starting")

	projector := projection.NewProjector(log)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, consumerGroup, log, kafka.WithSlices(slices...))
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Consume(ctx, projector.HandleAction); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("consumer stopped")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-done:
	}

	log.Info("shutting down")
	cancel()
	<-done
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.Level = lvl
	}
	return log
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
