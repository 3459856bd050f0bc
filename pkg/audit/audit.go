// Package audit persists a trail of ADSC decisions to a local SQLite
// database: every evaluation outcome, stability-timer arm/cancel, and
// validation retry. This is an observability log, not configuration
// persistence — spec.md's "ADSC does not persist configuration" non-goal is
// untouched by it.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sim-autonomy/adsc/pkg/logx"
)

// EventType enumerates the kinds of audit entries this trail records.
type EventType string

const (
	EventEvaluated        EventType = "evaluated"
	EventStabilityArmed   EventType = "stability_armed"
	EventStabilityFired   EventType = "stability_fired"
	EventSwitchCancelled  EventType = "switch_cancelled"
	EventValidationRetry  EventType = "validation_retry"
	EventValidationFailed EventType = "validation_exhausted"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp time.Time
	Event     EventType
	Slot      int
	Reason    string
	Detail    string
}

// Trail writes Entry records to a SQLite file.
type Trail struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open creates (or reuses) the SQLite file at path and ensures its schema.
func Open(path string, logger *logx.Logger) (*Trail, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	t := &Trail{db: db, logger: logger}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit database: %w", err)
	}

	return t, nil
}

func (t *Trail) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		event TEXT NOT NULL,
		slot INTEGER NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_decisions_event ON decisions(event);
	`
	_, err := t.db.Exec(schema)
	return err
}

// Record appends an entry to the trail. Failures are logged, not returned,
// matching spec.md §7's posture that observability never blocks decisions.
func (t *Trail) Record(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	const insert = `INSERT INTO decisions (timestamp, event, slot, reason, detail) VALUES (?, ?, ?, ?, ?)`
	if _, err := t.db.Exec(insert, e.Timestamp.Format(time.RFC3339Nano), string(e.Event), e.Slot, e.Reason, e.Detail); err != nil {
		t.logger.Error("failed to record audit entry", "error", err, "event", string(e.Event))
	}
}

// Recent returns the most recent entries, newest first, up to limit.
func (t *Trail) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := t.db.Query(
		`SELECT timestamp, event, slot, reason, detail FROM decisions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			tsString string
		)
		if err := rows.Scan(&tsString, &e.Event, &e.Slot, &e.Reason, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, tsString); err == nil {
			e.Timestamp = parsed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (t *Trail) Close() error {
	return t.db.Close()
}
