// Package enclave defines the interface to the external confidential
// computation engine that generates line secrets and discloses them to
// granted identities. The rest of the system only ever handles opaque
// handles; plaintext secrets cross this boundary exclusively through the
// member-initiated Decrypt call.
package enclave

import "context"

// Handle references a secret held by the engine without exposing its value.
// Modelled as a newtype so a plaintext secret can never be passed where a
// handle is expected, or logged by accident.
type Handle string

// Secret domain used for line secrets: 8-digit base-10 values.
const (
	SecretMin uint32 = 10_000_000
	SecretMax uint32 = 99_999_999
)

// Engine is the confidential-computation collaborator.
type Engine interface {
	// GenerateSecret draws a value uniformly from [min, max] inside the
	// engine and returns an opaque handle to it.
	GenerateSecret(ctx context.Context, min, max uint32) (Handle, error)

	// GrantDecrypt authorizes identity to request disclosure of the secret
	// behind handle. Granting an already-granted identity is a no-op.
	GrantDecrypt(ctx context.Context, handle Handle, identity string) error

	// Decrypt discloses the plaintext secret to a granted identity. It is
	// invoked out-of-band by members, never by the access-control core.
	Decrypt(ctx context.Context, handle Handle, identity string) (uint32, error)
}
