package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

func parseLineID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("line id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("line id must be a positive integer")
	}
	return id, nil
}

// Create asks for a line name and creates a new line. The caller becomes
// its first member.
func (a *App) Create(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter line name", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.client.CreateLine(ctx, name)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Line %d created", id))
	return nil
}

// Join adds the logged-in identity to a line.
func (a *App) Join(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}

	if err := a.client.Join(ctx, id); err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Joined line %d", id))
	return nil
}

// Line shows one line's metadata and counts.
func (a *App) Line(ctx context.Context, args []string) error {
	id, err := parseLineID(args)
	if err != nil {
		return err
	}

	line, err := a.client.Line(ctx, id)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Line %d: %q created by %s, %d member(s), %d message(s)",
		line.LineID, line.Name, line.Creator, line.MemberCount, line.MessageCount))
	return nil
}

// Lines shows the total number of lines on the server.
func (a *App) Lines(ctx context.Context) error {
	n, err := a.client.LineCount(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("%d line(s) on server", n))
	return nil
}
