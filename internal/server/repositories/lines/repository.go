package lines

import (
	"context"
	"time"

	"github.com/linekeeper/linekeeper/internal/server/models"
)

// Repository is the line directory: it owns line identity and metadata.
// Lines are append-only; there is no delete operation.
type Repository interface {
	// Create allocates the next sequential line id and records metadata.
	Create(ctx context.Context, name, creator string, createdAt time.Time) (int64, error)

	// Get returns a snapshot of the line, or common.ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Line, error)

	// Exists reports whether the id was ever allocated.
	Exists(ctx context.Context, id int64) (bool, error)

	// Count returns the total number of lines.
	Count(ctx context.Context) (int64, error)

	// NextMessageSeq assigns and returns the next 0-based message sequence
	// number for the line, or common.ErrNotFound if the line is unknown.
	// Assignment serializes on the line row.
	NextMessageSeq(ctx context.Context, id int64) (int64, error)
}
