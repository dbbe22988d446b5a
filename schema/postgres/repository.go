// Package postgres holds the schema repository of the catalog database.
//
// Each directory named by an integer is a schema version,
// and *.sql files in it are applied in the order of their names.
package postgres

import "embed"

//go:embed */*.sql
var Repository embed.FS
