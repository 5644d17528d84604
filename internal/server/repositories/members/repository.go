package members

import (
	"context"
	"time"
)

// Repository is the membership registry. The relation is strictly additive:
// Add is the only mutation and nothing ever removes a record.
//
// Line existence is checked by the coordinator inside the same transaction,
// so implementations may assume the line exists.
type Repository interface {
	// Add inserts a membership record. Returns common.ErrAlreadyMember if
	// the identity is already present; uniqueness must hold under
	// concurrent calls (at most one of two racing adds succeeds).
	Add(ctx context.Context, lineID int64, identity string, joinedAt time.Time) error

	// IsMember reports whether identity belongs to the line.
	IsMember(ctx context.Context, lineID int64, identity string) (bool, error)

	// Count returns the cardinality of the line's membership set. It is
	// always computed from the relation, never cached.
	Count(ctx context.Context, lineID int64) (int64, error)
}
