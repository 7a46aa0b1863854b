package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ai4biz/portal/internal/core"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS registrations (
	seq               INTEGER PRIMARY KEY,
	id                TEXT NOT NULL UNIQUE,
	full_name         TEXT NOT NULL,
	email             TEXT NOT NULL,
	phone             TEXT NOT NULL,
	board             TEXT NOT NULL,
	class_completed   TEXT NOT NULL,
	demo_status       TEXT NOT NULL,
	enrollment_status TEXT NOT NULL,
	payment_status    TEXT NOT NULL,
	registration_date TEXT NOT NULL
)`

// sqlColumns are the table columns in core.Columns order.
var sqlColumns = []string{
	"id", "full_name", "email", "phone", "board", "class_completed",
	"demo_status", "enrollment_status", "payment_status", "registration_date",
}

// SQLiteBackend keeps one row per registration in a local SQLite file.
// Insertion order is preserved through the seq column.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

var _ core.Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if path == "" {
		path = "registrations.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the store already serializes mutations.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create registrations table: %w", err)
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite:" + b.path }

// Load returns every row in insertion order.
func (b *SQLiteBackend) Load(ctx context.Context) ([]core.Registration, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, full_name, email, phone, board, class_completed,
		demo_status, enrollment_status, payment_status, registration_date
		FROM registrations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select registrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []core.Registration{}
	for rows.Next() {
		vals := make([]string, len(sqlColumns))
		dest := make([]any, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec, err := recordFromValues(vals)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save replaces the table contents in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, records []core.Registration) (retErr error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations`); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO registrations (seq, id, full_name, email, phone, board,
		class_completed, demo_status, enrollment_status, payment_status, registration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		args := []any{i + 1}
		for _, v := range r.Values() {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
