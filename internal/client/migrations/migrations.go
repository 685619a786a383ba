// Package migrations embeds the SQL migrations for the local client database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
