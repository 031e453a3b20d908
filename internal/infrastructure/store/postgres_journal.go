package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_actions (
	id          UUID PRIMARY KEY,
	client_id   TEXT NOT NULL,
	slice       TEXT NOT NULL,
	action_type TEXT NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	payload     JSONB,
	version     INTEGER NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (client_id, version)
);
CREATE TABLE IF NOT EXISTS storefront_snapshots (
	client_id  TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	state      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

// PostgresJournal stores the actions of one client in PostgreSQL
type PostgresJournal struct {
	db        *sql.DB
	clientID  string
	publisher Publisher
	log       logrus.FieldLogger
}

func NewPostgresJournal(db *sql.DB, clientID string, publisher Publisher, opts ...JournalOption) *PostgresJournal {
	cfg := newJournalConfig(opts)
	return &PostgresJournal{
		db:        db,
		clientID:  clientID,
		publisher: publisher,
		log:       cfg.log,
	}
}

// EnsureSchema creates the journal tables when missing
func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// Append stores an action in PostgreSQL and publishes it to Kafka
func (j *PostgresJournal) Append(ctx context.Context, slice, actionType, requestID string, payload any) (*Action, error) {
	data, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	// Get next version
	var currentVersion int
	err = j.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM storefront_actions WHERE client_id = $1",
		j.clientID,
	).Scan(&currentVersion)
	if err != nil {
		return nil, err
	}

	action := Action{
		ID:        uuid.New().String(),
		Slice:     slice,
		Type:      actionType,
		RequestID: requestID,
		Payload:   data,
		Timestamp: time.Now(),
		Version:   currentVersion + 1,
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO storefront_actions (id, client_id, slice, action_type, request_id, payload, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		action.ID,
		j.clientID,
		action.Slice,
		action.Type,
		action.RequestID,
		nullablePayload(action.Payload),
		action.Version,
		action.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert action: %w", err)
	}

	publish(ctx, j.publisher, j.clientID, action, j.log)
	return &action, nil
}

// GetActionsFromVersion returns actions after version (for replay)
func (j *PostgresJournal) GetActionsFromVersion(ctx context.Context, version int) ([]Action, error) {
	return j.query(ctx,
		`SELECT id, slice, action_type, request_id, payload, version, created_at
		 FROM storefront_actions
		 WHERE client_id = $1 AND version > $2
		 ORDER BY version ASC`,
		j.clientID, version,
	)
}

func (j *PostgresJournal) query(ctx context.Context, q string, args ...any) ([]Action, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var payload []byte
		if err := rows.Scan(&a.ID, &a.Slice, &a.Type, &a.RequestID, &payload, &a.Version, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		if len(payload) > 0 {
			a.Payload = json.RawMessage(payload)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read actions: %w", err)
	}
	return actions, nil
}

// GetSnapshot returns the latest snapshot of the client, or nil
func (j *PostgresJournal) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	var state []byte
	err := j.db.QueryRowContext(ctx,
		"SELECT version, state, created_at FROM storefront_snapshots WHERE client_id = $1",
		j.clientID,
	).Scan(&s.Version, &state, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.State = json.RawMessage(state)
	return &s, nil
}

// SaveSnapshot replaces the snapshot of the client
func (j *PostgresJournal) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO storefront_snapshots (client_id, version, state, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (client_id) DO UPDATE
		 SET version = EXCLUDED.version, state = EXCLUDED.state, created_at = EXCLUDED.created_at`,
		j.clientID,
		snapshot.Version,
		[]byte(snapshot.State),
		snapshot.CreatedAt,
	)
	return err
}

func nullablePayload(p json.RawMessage) any {
	if len(p) == 0 {
		return nil
	}
	return []byte(p)
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
