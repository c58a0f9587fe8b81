/*
Package sqlite provides the SQLite-backed persistence for the login-bonus
engine.

INTERFACES IMPLEMENTED:
  bonus.Persistence: Whole-state load/save (one row per week record)
  bonus.EventSink:   Append-only audit trail of mutations

KEY TABLES:
  weeks:  One row per week record; day logins serialized as JSON.
  events: Append-only mutation trail. No UPDATE or DELETE ever runs
          against it.

CORRUPTION POLICY:
  A row that fails to decode (bad JSON, unknown claim state) is skipped
  on load and behaves as if absent - the engine recreates the week empty.
  Load never fails because of bad data, only on database-level errors.

WAL MODE:
  The database is opened with WAL for better crash recovery; readers do
  not block the single writer.

USAGE:
  store, err := sqlite.New("./bonus.db")  // ":memory:" for tests
  if err != nil { ... }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/bonus-engine/bonus"
)

// Store implements bonus.Persistence and bonus.EventSink using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS weeks (
		id TEXT PRIMARY KEY,
		bonus_text TEXT NOT NULL DEFAULT '',
		claim_state TEXT NOT NULL DEFAULT 'pending',
		day_logins_json TEXT NOT NULL DEFAULT '{}',
		updated_at TEXT NOT NULL
	);

	-- Append-only mutation trail
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		action TEXT NOT NULL,
		week_id TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_week ON events(week_id);
	CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// PERSISTENCE - bonus.Persistence
// =============================================================================

// Load reads every week row into a state. Undecodable rows are skipped.
func (s *Store) Load(ctx context.Context) (bonus.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, bonus_text, claim_state, day_logins_json FROM weeks`)
	if err != nil {
		return bonus.State{}, fmt.Errorf("failed to load weeks: %w", err)
	}
	defer rows.Close()

	state := bonus.NewState()
	for rows.Next() {
		var id, bonusText, claimState, loginsJSON string
		if err := rows.Scan(&id, &bonusText, &claimState, &loginsJSON); err != nil {
			return bonus.State{}, fmt.Errorf("failed to scan week row: %w", err)
		}

		var logins map[string]bool
		if err := json.Unmarshal([]byte(loginsJSON), &logins); err != nil {
			continue // corrupt row behaves as absent
		}
		rec := bonus.WeekRecord{
			ID:         id,
			BonusText:  bonusText,
			ClaimState: bonus.ClaimState(claimState),
			DayLogins:  logins,
		}
		if !rec.ClaimState.Valid() {
			continue
		}
		state.Weeks[id] = rec
	}
	if err := rows.Err(); err != nil {
		return bonus.State{}, fmt.Errorf("failed to iterate weeks: %w", err)
	}
	return state, nil
}

// Save upserts every week record in a single transaction. Records are
// never deleted, so no pruning pass is needed.
func (s *Store) Save(ctx context.Context, state bonus.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weeks (id, bonus_text, claim_state, day_logins_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bonus_text = excluded.bonus_text,
			claim_state = excluded.claim_state,
			day_logins_json = excluded.day_logins_json,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for id, rec := range state.Weeks {
		loginsJSON, err := json.Marshal(rec.DayLogins)
		if err != nil {
			return fmt.Errorf("failed to encode day logins for %s: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx,
			id, rec.BonusText, string(rec.ClaimState), string(loginsJSON), now); err != nil {
			return fmt.Errorf("failed to upsert week %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// =============================================================================
// AUDIT EVENTS - bonus.EventSink
// =============================================================================

// Record appends one event to the trail.
func (s *Store) Record(ctx context.Context, event bonus.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, at, action, week_id, detail) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.At.Format(time.RFC3339Nano), string(event.Action), event.WeekID, event.Detail)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent events, newest first.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]bonus.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, action, week_id, COALESCE(detail, '') FROM events ORDER BY at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []bonus.Event
	for rows.Next() {
		var ev bonus.Event
		var at, action string
		if err := rows.Scan(&ev.ID, &at, &action, &ev.WeekID, &ev.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Action = bonus.EventAction(action)
		if ts, err := time.Parse(time.RFC3339Nano, at); err == nil {
			ev.At = ts
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
