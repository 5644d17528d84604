// Package cache stores unlocked line secrets in a local sqlite file so the
// user enters each secret once per machine, not once per message.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/linekeeper/linekeeper/internal/client/cache/migrations"
	"github.com/linekeeper/linekeeper/internal/common"
	"github.com/linekeeper/linekeeper/internal/dbx"
	"github.com/linekeeper/linekeeper/internal/enclave"
)

// Entry is one cached secret with the handle it was unlocked from.
type Entry struct {
	LineID int64
	Handle enclave.Handle
	Secret uint32
}

// Cache is the sqlite-backed secret store.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache file and brings its schema up to date.
func Open(ctx context.Context, dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrating cache: %w", err)
	}

	return &Cache{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Save stores or replaces the secret for a line.
func (c *Cache) Save(ctx context.Context, e *Entry) error {
	query := `INSERT INTO line_secrets (line_id, handle, secret)
			VALUES (?, ?, ?)
			ON CONFLICT(line_id) DO UPDATE SET handle = excluded.handle, secret = excluded.secret
	`
	if _, err := c.conn().ExecContext(ctx, query, e.LineID, string(e.Handle), e.Secret); err != nil {
		return fmt.Errorf("failed to upsert secret: %w", err)
	}
	return nil
}

// Get returns the cached secret for a line, or common.ErrNotFound.
func (c *Cache) Get(ctx context.Context, lineID int64) (*Entry, error) {
	query := `select line_id, handle, secret from line_secrets where line_id=?`
	row := c.conn().QueryRowContext(ctx, query, lineID)

	e := &Entry{}
	var handle string
	if err := row.Scan(&e.LineID, &handle, &e.Secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	e.Handle = enclave.Handle(handle)
	return e, nil
}

func (c *Cache) conn() dbx.DBTX {
	return c.db
}
