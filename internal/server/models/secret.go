package models

import (
	"time"

	"github.com/linekeeper/linekeeper/internal/enclave"
)

// Secret binds a line to the opaque engine handle of its shared secret.
// Exactly one exists per line, created atomically with it. The plaintext
// value never appears server-side.
type Secret struct {
	LineID    int64
	Handle    enclave.Handle
	CreatedAt time.Time
}
