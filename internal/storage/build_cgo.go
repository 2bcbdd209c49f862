//go:build sqlite_vec
// +build sqlite_vec

package storage

// Compiled when building with CGO and the sqlite_vec tag:
//
//	CGO_ENABLED=1 go build -tags "sqlite_vec,fts5" ./...
//
// Uses mattn/go-sqlite3 with the sqlite-vec extension, giving native
// cosine similarity and C-speed FTS5. Recommended for servers that
// index many repositories.

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver this build registers.
	DriverName = "sqlite3"

	// VectorExtensionAvailable reports whether similarity search
	// runs inside SQLite instead of in Go.
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
