package repomanager

import (
	"context"

	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/server/repositories/lines"
	"github.com/linekeeper/linekeeper/internal/server/repositories/members"
	"github.com/linekeeper/linekeeper/internal/server/repositories/messages"
	"github.com/linekeeper/linekeeper/internal/server/repositories/secrets"
)

// RepositoryManager vends repository implementations for one storage
// backend and owns the transaction boundary the coordinator runs its
// mutating operations inside.
type RepositoryManager interface {
	// Conn returns a handle for read operations outside a transaction.
	Conn() dbx.DBTX

	// InTx runs fn atomically: all repository calls made through the
	// passed handle commit together or not at all. Implementations must
	// also serialize conflicting mutations (two concurrent member adds
	// for the same pair must not both succeed).
	InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	// RunMigrations brings the backing schema up to date.
	RunMigrations(ctx context.Context) error

	Lines(db dbx.DBTX) lines.Repository
	Members(db dbx.DBTX) members.Repository
	Secrets(db dbx.DBTX) secrets.Repository
	Messages(db dbx.DBTX) messages.Repository

	Close() error
}
