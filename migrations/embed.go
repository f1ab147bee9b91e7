// Package migrations holds the SQL schema, embedded into the server binary.
package migrations

import "embed"

// FS contains every migration file.
//
//go:embed *.sql
var FS embed.FS
