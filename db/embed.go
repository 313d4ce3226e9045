// Package db provides the embedded schema for the local snapshot database.
package db

import _ "embed"

// Schema contains the DDL statements for the snapshot store.
//
//go:embed migrations/001_schema.sql
var Schema string
