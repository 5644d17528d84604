// Package memstore implements the repository interfaces over shared
// in-memory state. It backs the "memory" storage driver and gives tests
// isolated, disposable state instances.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/linekeeper/linekeeper/internal/server/models"
)

// Store holds all per-line state behind a single RWMutex. Reads never block
// each other; mutating operations are additionally serialized by InTx so a
// multi-step update is observed either fully or not at all.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	nextLineID int64
	lines      map[int64]*models.Line
	members    map[int64]map[string]time.Time
	secrets    map[int64]*models.Secret
	grants     map[int64]map[string]time.Time
	messages   map[int64][]*models.Message
	messageSeq map[int64]int64
}

func New() *Store {
	return &Store{
		nextLineID: 1,
		lines:      make(map[int64]*models.Line),
		members:    make(map[int64]map[string]time.Time),
		secrets:    make(map[int64]*models.Secret),
		grants:     make(map[int64]map[string]time.Time),
		messages:   make(map[int64][]*models.Message),
		messageSeq: make(map[int64]int64),
	}
}

// InTx serializes mutating operations. Individual steps cannot fail after
// their preconditions pass, so there is nothing to roll back; exclusivity is
// what guarantees no partially-applied state becomes observable.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// Lines returns the line directory view of the store.
func (s *Store) Lines() *LineRepo { return &LineRepo{s: s} }

// Members returns the membership registry view of the store.
func (s *Store) Members() *MemberRepo { return &MemberRepo{s: s} }

// Secrets returns the secret vault view of the store.
func (s *Store) Secrets() *SecretRepo { return &SecretRepo{s: s} }

// Messages returns the message ledger view of the store.
func (s *Store) Messages() *MessageRepo { return &MessageRepo{s: s} }
