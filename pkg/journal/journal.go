// Package journal keeps an append-only log of workbook mutations in SQLite.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Operations recorded by the well service.
const (
	OpSave   = "save"
	OpAdd    = "add"
	OpDelete = "delete"
	OpMove   = "move"
	OpTotal  = "total"
)

// Entry is one recorded mutation.
type Entry struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Sheet     string    `json:"sheet"`
	Well      string    `json:"well,omitempty"`
	Target    string    `json:"target,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal stores entries in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open opens the journal database at dsn and configures WAL mode.
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "journal: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "journal: exec %s", pragma)
		}
	}
	return &Journal{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	op         TEXT NOT NULL,
	sheet      TEXT NOT NULL,
	well       TEXT NOT NULL DEFAULT '',
	target     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
`

func (j *Journal) Migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "journal: migrate")
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores e, assigning an ID and timestamp when they are unset.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (id, op, sheet, well, target, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Op, e.Sheet, e.Well, e.Target, e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrapf(err, "journal: insert %s %s", e.Op, e.Sheet)
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, op, sheet, well, target, created_at FROM entries ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "journal: list entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Op, &e.Sheet, &e.Well, &e.Target, &created); err != nil {
			return nil, eris.Wrap(err, "journal: scan entry")
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, eris.Wrapf(err, "journal: parse time of %s", e.ID)
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "journal: list entries iterate")
}
