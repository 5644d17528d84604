package messages

import (
	"context"

	"github.com/linekeeper/linekeeper/internal/server/models"
)

// Repository is the append-only message ledger. Entries are immutable and
// sequence numbers are assigned by the line directory before Append.
type Repository interface {
	// Append stores one entry. The coordinator validates membership and
	// ciphertext before calling.
	Append(ctx context.Context, m *models.Message) error

	// Get returns the entry at (lineID, seq), or common.ErrNotFound.
	Get(ctx context.Context, lineID, seq int64) (*models.Message, error)

	// Count returns the number of entries for the line.
	Count(ctx context.Context, lineID int64) (int64, error)
}
