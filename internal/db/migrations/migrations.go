// Package migrations embeds the goose migrations of both storage drivers.
package migrations

import "embed"

// FS holds one directory per goose dialect: postgres and sqlite.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
