// Package messages provides the PostgreSQL-backed message ledger.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/server/models"
)

// PostgresRepository implements ledger storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, m *models.Message) error {
	query :=
		`INSERT INTO messages (line_id, seq, sender, ciphertext, sent_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, m.LineID, m.Seq, m.Sender, m.Ciphertext, m.SentAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, lineID, seq int64) (*models.Message, error) {
	query :=
		`SELECT line_id, seq, sender, ciphertext, sent_at FROM messages
		 WHERE line_id = $1 AND seq = $2
		 `

	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, query, lineID, seq).
		Scan(&m.LineID, &m.Seq, &m.Sender, &m.Ciphertext, &m.SentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Count(ctx context.Context, lineID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE line_id = $1`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, lineID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
