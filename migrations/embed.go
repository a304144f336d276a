// Package migrations holds the versioned SQL schema, embedded into the
// binaries that apply it.
package migrations

import "embed"

// FS contains the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
