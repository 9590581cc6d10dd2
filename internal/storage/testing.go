package storage

import "path/filepath"

// NewTestDB opens a migrated database file inside dir. It is exported for
// tests of packages built on the storage service.
func NewTestDB(dir string) (*DB, error) {
	config := DefaultConfig(filepath.Join(dir, "test.db"))
	config.AutoMigrate = true
	return Open(config)
}
