// Package journal records applied mutations in an append-only SQLite log.
// The journal is an audit trail, not a source of truth: the canonical
// collections stand alone, and a missing journal entry never invalidates
// the store. Entries are written only after a mutation has been validated
// and persisted.
package journal

import (
	"context"
	"database/sql"
	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/reqstore/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one applied mutation.
type Entry struct {
	Seq       int64  `json:"seq"`
	OpID      string `json:"op_id"`
	Op        string `json:"op"`
	Payload   string `json:"payload"`
	Message   string `json:"message"`
	AppliedAt string `json:"applied_at"`
}

// Journal is an append-only mutation log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at the given path.
//
// The database runs in WAL mode with a single writer connection; SQLite
// supports one writer at a time, so the pool is capped at one connection.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, record.WrapError(record.CodeIO, err, "open journal %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, record.WrapError(record.CodeIO, err, "connect to journal %s", path)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, record.WrapError(record.CodeIO, err, "execute %q", pragma)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, record.WrapError(record.CodeIO, err, "apply journal schema")
	}

	return &Journal{db: db}, nil
}

// Close closes the journal.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records one applied mutation. Duplicate op_ids are silently
// ignored so a retried append stays idempotent.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO mutations (op_id, op, payload, message, applied_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(op_id) DO NOTHING
	`,
		e.OpID,
		e.Op,
		e.Payload,
		e.Message,
		e.AppliedAt,
	)
	if err != nil {
		return record.WrapError(record.CodeIO, err, "append journal entry %s", e.OpID)
	}
	return nil
}

// Tail returns the most recent n entries, newest first.
func (j *Journal) Tail(ctx context.Context, n int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, op_id, op, payload, message, applied_at
		FROM mutations
		ORDER BY seq DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, record.WrapError(record.CodeIO, err, "read journal tail")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.OpID, &e.Op, &e.Payload, &e.Message, &e.AppliedAt); err != nil {
			return nil, record.WrapError(record.CodeIO, err, "scan journal entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, record.WrapError(record.CodeIO, err, "read journal tail")
	}
	return entries, nil
}
