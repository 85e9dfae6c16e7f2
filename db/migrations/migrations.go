// Package migrations embeds the dbmate migration files so the archive can
// be brought up to date without the dbmate binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
