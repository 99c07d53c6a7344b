package blobstore

import (
	"fmt"

	"github.com/archlinux/archwiki-sub029/wiki"

	"github.com/rs/zerolog"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store is a wiki.BlobStore that can list its content and must be closed after use.
type Store interface {
	wiki.BlobStore
	Addresses() ([]string, error)
	Close() error
}

// Open creates the store for the given driver. path is ignored by the memory driver.
func Open(logger zerolog.Logger, driver string, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(logger), nil
	case DriverSQLite:
		return OpenSQLiteStore(logger, path)
	default:
		return nil, fmt.Errorf("unknown blob store driver %q", driver)
	}
}
