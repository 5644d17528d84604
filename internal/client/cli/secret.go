package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/linekeeper/linekeeper/internal/client/cache"
	"github.com/linekeeper/linekeeper/internal/enclave"
)

// Secret shows the engine handle of a line's shared secret. The handle is
// presented to the engine operator to obtain the plaintext secret; the
// server never discloses it.
func (a *App) Secret(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}

	handle, err := a.client.SecretHandle(ctx, id)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Line %d secret handle: %s", id, handle))
	return nil
}

// Unlock caches the 8-digit shared secret for a line so send and read can
// encrypt and decrypt locally.
func (a *App) Unlock(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: unlock <id> <secret>")
	}

	secret, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil || uint32(secret) < enclave.SecretMin || uint32(secret) > enclave.SecretMax {
		return fmt.Errorf("secret must be an 8-digit number")
	}

	handle, err := a.client.SecretHandle(ctx, id)
	if err != nil {
		return err
	}

	err = a.cache.Save(ctx, &cache.Entry{LineID: id, Handle: enclave.Handle(handle), Secret: uint32(secret)})
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Line %d unlocked", id))
	return nil
}
