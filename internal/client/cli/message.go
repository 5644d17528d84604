package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/linekeeper/linekeeper/internal/cipherx"
)

// Send asks for message text, encrypts it with the line's cached secret
// and posts the ciphertext. The line must be unlocked first.
func (a *App) Send(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}

	entry, err := a.cache.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("line %d is locked, run: unlock %d <secret>", id, id)
	}

	text, err := GetSimpleText(a.reader, "Enter message text", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("message must not be empty")
	}

	seq, err := a.client.Post(ctx, id, cipherx.Encrypt(entry.Secret, []byte(text)))
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Message %d sent to line %d", seq, id))
	return nil
}

// Read fetches one message and decrypts it with the line's cached secret.
func (a *App) Read(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: read <id> <seq>")
	}
	seq, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || seq < 0 {
		return fmt.Errorf("seq must be a non-negative integer")
	}

	entry, err := a.cache.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("line %d is locked, run: unlock %d <secret>", id, id)
	}

	m, err := a.client.Message(ctx, id, seq)
	if err != nil {
		return err
	}

	plaintext := cipherx.Decrypt(entry.Secret, m.Ciphertext)
	printlnFn(fmt.Sprintf("[%d] %s: %s", m.Seq, m.Sender, string(plaintext)))
	return nil
}
