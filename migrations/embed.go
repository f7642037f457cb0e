// Package migrations embeds the versioned SQL schema for the costing service.
package migrations

import "embed"

// FS holds the numbered up/down migration pairs.
//
//go:embed *.sql
var FS embed.FS
