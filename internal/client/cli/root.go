package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if a.identity == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.identity)
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to linekeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, a.getStatus, scanner)
}
