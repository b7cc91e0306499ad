// Package migrations embeds the goose SQL migrations that define the
// link-sharing schema: users, channels, subscriptions, links and reactions.
//
// Files are named YYYYMMDDHHMMSS_description.sql and applied in order at
// startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
