package cli

import (
	"context"
	"fmt"
	"os"
)

// Login asks for an identity and exchanges it for a bearer token. The
// token is kept by the API client for all subsequent requests.
func (a *App) Login(ctx context.Context) error {
	identity, err := GetSimpleText(a.reader, "Enter your identity", os.Stdout)
	if err != nil {
		return err
	}
	if identity == "" {
		return fmt.Errorf("identity must not be empty")
	}

	if _, err := a.client.IssueToken(ctx, identity); err != nil {
		return err
	}

	a.identity = identity
	printlnFn("Logged in as", identity)
	return nil
}
