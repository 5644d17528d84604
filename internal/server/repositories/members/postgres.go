// Package members provides the PostgreSQL-backed membership registry.
package members

import (
	"context"
	"fmt"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
)

// PostgresRepository implements membership storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add relies on the (line_id, identity) primary key: a conflicting insert
// affects zero rows, which is reported as ErrAlreadyMember. Two concurrent
// adds for the same pair therefore cannot both succeed.
func (r *PostgresRepository) Add(ctx context.Context, lineID int64, identity string, joinedAt time.Time) error {
	query :=
		`INSERT INTO members (line_id, identity, joined_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (line_id, identity) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, lineID, identity, joinedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrAlreadyMember
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) IsMember(ctx context.Context, lineID int64, identity string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM members WHERE line_id = $1 AND identity = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, lineID, identity).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) Count(ctx context.Context, lineID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM members WHERE line_id = $1`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, lineID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
