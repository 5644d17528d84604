// Package secrets provides the PostgreSQL-backed secret vault.
package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/enclave"
)

// PostgresRepository implements vault storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, lineID int64, handle enclave.Handle, createdAt time.Time) error {
	query :=
		`INSERT INTO secrets (line_id, handle, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (line_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, lineID, string(handle), createdAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrAlreadyInitialized
	}
	return nil
}

func (r *PostgresRepository) GetHandle(ctx context.Context, lineID int64) (enclave.Handle, error) {
	query := `SELECT handle FROM secrets WHERE line_id = $1`

	var handle string
	err := r.db.QueryRowContext(ctx, query, lineID).Scan(&handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return enclave.Handle(handle), nil
}

// Grant is idempotent-safe: the coordinator only calls it once per identity
// (the registry's uniqueness check runs first), but a repeated call is
// absorbed by the conflict clause.
func (r *PostgresRepository) Grant(ctx context.Context, lineID int64, identity string, grantedAt time.Time) error {
	query :=
		`INSERT INTO secret_grants (line_id, identity, granted_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (line_id, identity) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, lineID, identity, grantedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
