package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"sparxfest/internal/model"
)

// Entry is one parked registration payload, keyed by its client-assigned id.
type Entry struct {
	ID           string
	Registration model.Registration
	QueuedAt     time.Time
}

// Store is the local persistent queue of registrations that could not be
// submitted. It is an ordered list with by-id removal, nothing more: no
// delivery guarantee, no cross-device ordering, no conflict detection.
type Store struct {
	db  *sql.DB
	log *zerolog.Logger
}

func Open(path string, log *zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue store %s: %w", path, err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS pending_registrations (
			id        TEXT PRIMARY KEY,
			payload   TEXT NOT NULL,
			queued_at TEXT NOT NULL
		)
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create queue schema: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put parks a registration under its client-assigned id. Re-queueing the same
// id overwrites the previous payload.
func (s *Store) Put(ctx context.Context, id string, reg *model.Registration) error {
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal queued registration: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO pending_registrations (id, payload, queued_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, string(payload), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to queue registration: %w", err)
	}
	s.log.Info().Str("queue_id", id).Msg("registration parked in offline queue")
	return nil
}

// List returns the queue in arrival order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, payload, queued_at
		FROM pending_registrations
		ORDER BY queued_at ASC, rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued registrations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			payload  string
			queuedAt string
		)
		if err := rows.Scan(&entry.ID, &payload, &queuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queued registration: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Registration); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queued registration %s: %w", entry.ID, err)
		}
		if t, err := time.Parse(time.RFC3339, queuedAt); err == nil {
			entry.QueuedAt = t
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Remove drops one entry by id. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_registrations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove queued registration %s: %w", id, err)
	}
	return nil
}
