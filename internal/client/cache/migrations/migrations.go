// Package migrations embeds the sqlite schema migrations for the client
// cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
