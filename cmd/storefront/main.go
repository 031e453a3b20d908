package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/session"
	"github.com/example/ec-storefront/internal/storefront"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := newLogger(getEnv("LOG_LEVEL", "warn"))

	app, cleanup, err := setup(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start storefront")
	}
	defer cleanup()

	if err := run(ctx, app, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cleanup()
		os.Exit(1)
	}
}

// setup builds the app from the environment. The returned cleanup flushes
// the Kafka writer and closes the database.
func setup(ctx context.Context, log *logrus.Logger) (*storefront.App, func(), error) {
	apiURL := getEnv("STOREFRONT_API_URL", "http://localhost:5001/api")
	tokenFile := getEnv("STOREFRONT_TOKEN_FILE", defaultTokenFile())
	clientID := getEnv("STOREFRONT_CLIENT_ID", defaultClientID())
	databaseURL := os.Getenv("DATABASE_URL")
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	kafkaTopic := getEnv("KAFKA_TOPIC", "storefront-actions")
	tracing := os.Getenv("ENABLE_TRACING") == "1"

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}

	if tracing {
		tp := initTracing(log)
		closers = append(closers, func() { tp.Shutdown(context.Background()) })
	}

	var publisher store.Publisher
	if kafkaBrokers != "" {
		producer := kafka.NewProducer(strings.Split(kafkaBrokers, ","), kafkaTopic, log)
		publisher = producer
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				log.WithError(err).Warn("close kafka producer")
			}
		})
	}

	var journal store.JournalInterface
	replay := false
	if databaseURL != "" {
		db, err := store.ConnectPostgres(databaseURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		closers = append(closers, func() { closeDB(db, log) })

		pg := store.NewPostgresJournal(db, clientID, publisher, store.WithLogger(log))
		if err := pg.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		journal = pg
		replay = true
	} else {
		journal = store.NewMemoryJournal(clientID, publisher, store.WithLogger(log))
	}

	app, err := storefront.New(storefront.Config{
		APIURL:  apiURL,
		Storage: session.NewFileStorage(tokenFile),
		Journal: journal,
		Replay:  replay,
		Sink:    terminalSink{},
		Tracing: tracing,
		Timeout: 15 * time.Second,
		Log:     log,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if err := app.Start(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return app, cleanup, nil
}

func closeDB(db *sql.DB, log logrus.FieldLogger) {
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("close database")
	}
}

// terminalSink prints toasts to stderr
type terminalSink struct{}

func (terminalSink) Show(toast ui.Toast) {
	prefix := "✓"
	if toast.Status == ui.StatusError {
		prefix = "✗"
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, toast.Message)
}

var _ notification.Sink = terminalSink{}

func initTracing(log logrus.FieldLogger) *sdktrace.TracerProvider {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("Tracing provider initialized (no exporter configured)")
	return tp
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
	log.Out = os.Stderr
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.Level = lvl
	}
	return log
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront-session.json"
	}
	return filepath.Join(dir, "ec-storefront", "session.json")
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "storefront"
	}
	return host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
