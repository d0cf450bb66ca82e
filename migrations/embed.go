package migrations

import "embed"

// FS contains the goose SQL migrations, applied at startup.
//
//go:embed *.sql
var FS embed.FS
