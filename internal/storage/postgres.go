package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ai4biz/portal/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS registrations (
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
	registration_date TIMESTAMPTZ NOT NULL
)`

// PostgresConfig holds pool settings for the postgres driver.
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresBackend keeps one row per registration in PostgreSQL.
// Save rewrites the table with COPY inside a single transaction.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

var _ core.Backend = (*PostgresBackend)(nil)

// OpenPostgres connects, verifies the connection and ensures the table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresBackend, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create registrations table: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

// Load returns every row in insertion order.
func (b *PostgresBackend) Load(ctx context.Context) ([]core.Registration, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, full_name, email, phone, board, class_completed,
		demo_status, enrollment_status, payment_status, registration_date
		FROM registrations ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select registrations: %w", err)
	}
	defer rows.Close()

	records := []core.Registration{}
	for rows.Next() {
		var (
			r                                   core.Registration
			board, class, demo, enroll, payment string
		)
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &r.Phone, &board, &class,
			&demo, &enroll, &payment, &r.RegistrationDate); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Board = core.Board(board)
		r.ClassCompleted = core.ClassCompleted(class)
		r.DemoStatus = core.DemoStatus(demo)
		r.EnrollmentStatus = core.EnrollmentStatus(enroll)
		r.PaymentStatus = core.PaymentStatus(payment)
		r.RegistrationDate = r.RegistrationDate.UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// Save replaces the table contents. Readers in other transactions keep
// seeing the old rows until commit.
func (b *PostgresBackend) Save(ctx context.Context, records []core.Registration) error {
	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM registrations`); err != nil {
			return fmt.Errorf("clear registrations: %w", err)
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"registrations"},
			append([]string{"seq"}, sqlColumns...),
			pgx.CopyFromRows(copyRows(records)),
		)
		if err != nil {
			return fmt.Errorf("copy registrations: %w", err)
		}
		if int(n) != len(records) {
			return fmt.Errorf("copied %d of %d registrations", n, len(records))
		}
		return nil
	})
}

// copyRows lays records out as COPY rows: seq followed by sqlColumns.
func copyRows(records []core.Registration) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			int32(i + 1),
			r.ID,
			r.FullName,
			r.Email,
			r.Phone,
			string(r.Board),
			string(r.ClassCompleted),
			string(r.DemoStatus),
			string(r.EnrollmentStatus),
			string(r.PaymentStatus),
			r.RegistrationDate,
		}
	}
	return rows
}

// Close closes the connection pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
