// Package migrations embeds the goose SQL migrations. The statements are kept
// portable so the same files run against postgres and sqlite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
