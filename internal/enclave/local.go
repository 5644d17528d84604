package enclave

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/linekeeper/linekeeper/internal/common"
)

// Local is an in-process Engine for development and tests. It keeps secrets
// and grants in memory behind a mutex; in production the engine is a remote
// threshold-cryptography service and this process never sees plaintext.
type Local struct {
	mu      sync.RWMutex
	secrets map[Handle]uint32
	grants  map[Handle]map[string]struct{}
}

func NewLocal() *Local {
	return &Local{
		secrets: make(map[Handle]uint32),
		grants:  make(map[Handle]map[string]struct{}),
	}
}

func (e *Local) GenerateSecret(_ context.Context, min, max uint32) (Handle, error) {
	if max < min {
		return "", fmt.Errorf("secret domain [%d, %d]: %w", min, max, common.ErrInvalidInput)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)+1))
	if err != nil {
		return "", fmt.Errorf("draw secret: %w", err)
	}

	handle := Handle(uuid.NewString())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.secrets[handle] = min + uint32(n.Int64())
	e.grants[handle] = make(map[string]struct{})

	return handle, nil
}

func (e *Local) GrantDecrypt(_ context.Context, handle Handle, identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.secrets[handle]; !ok {
		return fmt.Errorf("handle %q: %w", handle, common.ErrNotFound)
	}
	e.grants[handle][identity] = struct{}{}
	return nil
}

func (e *Local) Decrypt(_ context.Context, handle Handle, identity string) (uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	secret, ok := e.secrets[handle]
	if !ok {
		return 0, fmt.Errorf("handle %q: %w", handle, common.ErrNotFound)
	}
	if _, granted := e.grants[handle][identity]; !granted {
		return 0, fmt.Errorf("identity %q: %w", identity, common.ErrForbidden)
	}
	return secret, nil
}
