// Package runlog records every oracle call of a characterization run in a
// SQLite database. The checkpoint only keeps the winning measurement per
// signature; the run log keeps the full probe history (window state, slack,
// oracle estimates), which is what you want when a characterization looks
// wrong and you need to see how the search got there.
package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Log is a durable oracle-call log. Single-writer: the run coordinator's
// control flow owns it for the run's lifetime.
type Log struct {
	db *sql.DB
}

// Open creates or opens the run log database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to run log: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// NewRunID returns a time-ordered identifier for one characterization run.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Call is one oracle evaluation.
type Call struct {
	RunID        string
	SignatureKey string
	Op           string
	TargetHz     int64
	SlackPs      int64
	FmaxHz       int64
	Pass         bool
}

// Record appends one oracle call.
func (l *Log) Record(ctx context.Context, c Call) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO oracle_calls
		(run_id, signature_key, op, target_hz, slack_ps, fmax_hz, pass)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.RunID, c.SignatureKey, c.Op, c.TargetHz, c.SlackPs, c.FmaxHz, c.Pass,
	)
	if err != nil {
		return fmt.Errorf("record oracle call: %w", err)
	}
	return nil
}

// CallsForRun returns all calls for a run in insertion order.
func (l *Log) CallsForRun(ctx context.Context, runID string) ([]Call, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, signature_key, op, target_hz, slack_ps, fmax_hz, pass
		FROM oracle_calls
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query oracle calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		if err := rows.Scan(&c.RunID, &c.SignatureKey, &c.Op, &c.TargetHz, &c.SlackPs, &c.FmaxHz, &c.Pass); err != nil {
			return nil, fmt.Errorf("scan oracle call: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate oracle calls: %w", err)
	}
	return calls, nil
}

// CallCount returns the number of recorded calls for a run.
func (l *Log) CallCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM oracle_calls WHERE run_id = ?`, runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count oracle calls: %w", err)
	}
	return n, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
