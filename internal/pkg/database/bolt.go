package database

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// NewBoltDB opens (or creates) the single-file store at path. The file lock
// is held until Close, so a second process fails after the timeout.
func NewBoltDB(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	return db, nil
}
