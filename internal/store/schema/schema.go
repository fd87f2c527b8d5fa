// Package schema owns the database DDL and one-off data repairs run by cmd/migrate.
package schema

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/metrics"
	"github.com/seniorstay/staycation-api/internal/store/bookings"
)

//go:embed schema.sql
var DDL string

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Apply creates missing tables and indexes. It is safe to run repeatedly.
func Apply(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, DDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// StatusFixes maps every non-canonical stored status to its canonical form.
// Values that cannot be recognised are returned in unknown and left alone.
func StatusFixes(stored []string) (fixes map[string]bookings.Status, unknown []string) {
	fixes = map[string]bookings.Status{}
	for _, s := range stored {
		st, ok := bookings.NormalizeStatus(s)
		switch {
		case !ok:
			unknown = append(unknown, s)
		case string(st) != s:
			fixes[s] = st
		}
	}
	return fixes, unknown
}

// NormalizeStatuses rewrites legacy booking_status spellings and returns the
// number of rows changed.
func NormalizeStatuses(ctx context.Context, db DB, log *zap.Logger) (int64, error) {
	metrics.StatusNormalizationRunsTotal.Inc()

	rows, err := db.QueryContext(ctx, `SELECT DISTINCT booking_status FROM bookings`)
	if err != nil {
		return 0, err
	}
	var stored []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			rows.Close()
			return 0, err
		}
		stored = append(stored, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	fixes, unknown := StatusFixes(stored)
	for _, s := range unknown {
		log.Warn("unrecognised booking status left unchanged", zap.String("status", s))
	}

	var total int64
	for from, to := range fixes {
		res, err := db.ExecContext(ctx, `UPDATE bookings SET booking_status = $1 WHERE booking_status = $2`, string(to), from)
		if err != nil {
			return total, fmt.Errorf("normalize %q: %w", from, err)
		}
		n, _ := res.RowsAffected()
		total += n
		log.Info("normalized booking status", zap.String("from", from), zap.String("to", string(to)), zap.Int64("rows", n))
	}
	metrics.StatusNormalizationFixesTotal.Add(float64(total))
	return total, nil
}
