// Package lines provides the PostgreSQL-backed line directory.
package lines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/server/models"
)

// PostgresRepository implements line storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, name, creator string, createdAt time.Time) (int64, error) {
	query :=
		`INSERT INTO lines (name, creator, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	var id int64
	err := r.db.QueryRowContext(ctx, query, name, creator, createdAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Line, error) {
	query :=
		`SELECT id, name, creator, created_at FROM lines
		 WHERE id = $1
		 `

	line := &models.Line{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&line.ID, &line.Name, &line.Creator, &line.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return line, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM lines WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

// NextMessageSeq bumps the per-line counter and returns the previous value,
// so sequence numbers start at 0. The UPDATE takes the row lock, which
// serializes concurrent appends to the same line.
func (r *PostgresRepository) NextMessageSeq(ctx context.Context, id int64) (int64, error) {
	query :=
		`UPDATE lines SET message_seq = message_seq + 1
		 WHERE id = $1
		 RETURNING message_seq - 1
		 `

	var seq int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return seq, nil
}
