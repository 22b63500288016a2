//go:build sqlite_vec && !purego

package storage

import (
	// cgo driver with vec_distance_cosine; build with
	// CGO_ENABLED=1 go build -tags sqlite_vec ./...
	_ "github.com/mattn/go-sqlite3"
)

// Driver and capability flags for the cgo build. KNN runs in SQL.
const (
	DriverName               = "sqlite3"
	VectorExtensionAvailable = true
	BuildMode                = "cgo"
)
