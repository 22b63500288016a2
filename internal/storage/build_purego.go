//go:build purego || !sqlite_vec

package storage

import (
	// Pure Go driver, the default build
	_ "modernc.org/sqlite"
)

// Driver and capability flags for the pure Go build. KNN scans the
// sector's embeddings and ranks them in Go.
const (
	DriverName               = "sqlite"
	VectorExtensionAvailable = false
	BuildMode                = "purego"
)
