package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Create(ctx context.Context) error
	Join(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Line(ctx context.Context, args []string) error
	Lines(ctx context.Context) error
	Secret(ctx context.Context, args []string) error
	Unlock(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the linekeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             — show available commands
//	  - login            — choose an identity and obtain a token
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - help             — show available commands
//	  - create           — create a new line (interactive name prompt)
//	  - join <id>        — join a line
//	  - send <id>        — encrypt and post a message (interactive text prompt)
//	  - read <id> <seq>  — fetch and decrypt one message
//	  - line <id>        — show line metadata and counts
//	  - lines            — show the total line count
//	  - secret <id>      — show the line's secret handle
//	  - unlock <id> <n>  — cache the 8-digit shared secret locally
//	  - exit | quit      — leave the program
//
// Any errors returned by command handlers are reported to the user here;
// handlers only format their own domain output.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("lk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: create, join <id>, send <id>, read <id> <seq>, line <id>, lines, secret <id>, unlock <id> <secret>, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "create":
			err = a.Create(ctx)

		case "join":
			err = a.Join(ctx, args)

		case "send":
			err = a.Send(ctx, args)

		case "read":
			err = a.Read(ctx, args)

		case "line":
			err = a.Line(ctx, args)

		case "lines":
			err = a.Lines(ctx)

		case "secret":
			err = a.Secret(ctx, args)

		case "unlock":
			err = a.Unlock(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
