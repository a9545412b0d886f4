package dedup

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed Log shared across processes.
type PG struct {
	pool pgxExecer
}

type pgxExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewPG constructs a PostgreSQL-backed log.
func NewPG(pool *pgxpool.Pool) *PG { return &PG{pool: pool} }

// NewPGWithExecer constructs a PostgreSQL-backed log over any executor.
func NewPGWithExecer(q pgxExecer) *PG { return &PG{pool: q} }

// Record inserts the id; a conflict means it was recorded before. The
// insert is atomic, so concurrent submitters of the same id agree on a
// single first-seen winner.
func (l *PG) Record(ctx context.Context, submissionID string) (bool, error) {
	const q = `
INSERT INTO submission_log (submission_id, first_seen_at)
VALUES ($1, now())
ON CONFLICT (submission_id) DO NOTHING`
	tag, err := l.pool.Exec(ctx, q, submissionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
