// Package db holds the schema migrations for the SQL stores.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
