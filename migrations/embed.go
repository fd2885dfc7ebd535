// Package migrations embeds the profiles and despachos schema for the migrator.
package migrations

import "embed"

// FS contains all migration SQL files.
//
//go:embed *.sql
var FS embed.FS
