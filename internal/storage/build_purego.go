//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// Compiled when building without CGO or without the sqlite_vec tag:
//
//	CGO_ENABLED=0 go build ./...
//
// Uses the pure Go modernc.org/sqlite driver. No C toolchain needed
// and cross-compilation just works; vector similarity is computed in
// Go, which is fine for development and small indexes.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver this build registers.
	DriverName = "sqlite"

	// VectorExtensionAvailable reports whether similarity search
	// runs inside SQLite instead of in Go.
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
