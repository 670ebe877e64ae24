// Package migrations carries the SQL schema files, compiled into the binary
// so the server can run from any working directory.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
