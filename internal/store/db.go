package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidReference is returned when a row points at a missing parent.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// MissingField wraps ErrMissingField with the field name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// Blank reports whether an optional string is absent or whitespace.
func Blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// Pool is the subset of *pgxpool.Pool the repositories use.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// DB wraps the shared connection pool for database operations.
type DB struct {
	Pool Pool
}

// NewDB creates a connection pool.
func NewDB(ctx context.Context, url string, maxDBConnections int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxDBConnections
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

// FromPool wraps an existing pool, used by tests and tools that manage their own pool.
func FromPool(p Pool) *DB {
	return &DB{Pool: p}
}

func (d *DB) Ping(ctx context.Context) error { return d.Pool.Ping(ctx) }

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// WithTx runs the provided function within a transaction. It commits if fn returns nil,
// otherwise it rolls back and returns the error.
func (d *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// MapError translates driver errors into the package sentinels.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case IsUniqueViolation(err):
		return ErrConflict
	case IsForeignKeyViolation(err):
		return ErrInvalidReference
	default:
		return err
	}
}
