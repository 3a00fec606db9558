package migrations

import "embed"

// Migrations holds the schema of the parameter store
//
//go:embed *.sql
var Migrations embed.FS
