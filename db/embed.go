// Package db embeds the DDL for the postgres cart backend.
package db

import _ "embed"

// Schema holds the carts table DDL, applied idempotently at startup and by
// the cart-maintenance tool.
//
//go:embed migrations/001_schema.sql
var Schema string
