package repomanager

import (
	"context"

	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/server/repositories/lines"
	"github.com/linekeeper/linekeeper/internal/server/repositories/members"
	"github.com/linekeeper/linekeeper/internal/server/repositories/memstore"
	"github.com/linekeeper/linekeeper/internal/server/repositories/messages"
	"github.com/linekeeper/linekeeper/internal/server/repositories/secrets"
)

// InMemoryRepositoryManager serves repositories over a shared memstore.
// The DBTX argument of the vending methods is ignored; atomicity comes from
// the store's transaction mutex instead of a database transaction.
type InMemoryRepositoryManager struct {
	store *memstore.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: memstore.New()}
}

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *InMemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return m.store.InTx(ctx, func(ctx context.Context) error {
		return fn(ctx, nil)
	})
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Lines(dbx.DBTX) lines.Repository {
	return m.store.Lines()
}

func (m *InMemoryRepositoryManager) Members(dbx.DBTX) members.Repository {
	return m.store.Members()
}

func (m *InMemoryRepositoryManager) Secrets(dbx.DBTX) secrets.Repository {
	return m.store.Secrets()
}

func (m *InMemoryRepositoryManager) Messages(dbx.DBTX) messages.Repository {
	return m.store.Messages()
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
