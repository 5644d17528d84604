package secrets

import (
	"context"
	"time"

	"github.com/linekeeper/linekeeper/internal/enclave"
)

// Repository is the secret vault: it binds each line to the opaque engine
// handle of its shared secret and records capability grants. Plaintext
// secrets never pass through here.
type Repository interface {
	// Create stores the handle for a newly created line. Returns
	// common.ErrAlreadyInitialized if the line already has one; issuing a
	// second secret for a line is a programming error.
	Create(ctx context.Context, lineID int64, handle enclave.Handle, createdAt time.Time) error

	// GetHandle returns the line's handle, or common.ErrNotFound.
	GetHandle(ctx context.Context, lineID int64) (enclave.Handle, error)

	// Grant records that identity may request decryption of the line's
	// secret. Granting twice is a no-op.
	Grant(ctx context.Context, lineID int64, identity string, grantedAt time.Time) error
}
