// Package kvstore persists opaque documents by key. Backends: sqlite, a
// directory of JSON files, and memory.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("kvstore: unknown driver")

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Store is a key-value document store. Implementations are safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open constructs the backend named by driver. Path is the database file for
// sqlite and the directory for file; memory ignores it.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite:
		return OpenSQLite(ctx, path)
	case DriverFile:
		return OpenFile(path)
	case DriverMemory, "":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kvstore: empty key")
	}
	return nil
}
