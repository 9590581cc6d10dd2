package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrationManager_Up(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	// Running again is a no-op.
	if err := mgr.Up(); err != nil {
		t.Fatalf("Second Up failed: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version != 2 {
		t.Errorf("Expected migration version 2, got %d", version)
	}
	_ = mgr.Close()
}

func TestMigrationManager_Tables(t *testing.T) {
	config := DefaultConfig(filepath.Join(t.TempDir(), "tables.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("Failed to open database with migrations: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"draft_games", "draft_records", "draft_votes", "card_ratings", "settings"} {
		var name string
		err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		if err == sql.ErrNoRows {
			t.Errorf("table %s does not exist after migration", table)
			continue
		}
		if err != nil {
			t.Errorf("failed to query for table %s: %v", table, err)
		}
	}

	var col string
	err = db.Conn().QueryRow(`SELECT name FROM pragma_table_info('draft_records') WHERE name = 'label'`).Scan(&col)
	if err != nil {
		t.Errorf("label column missing from draft_records: %v", err)
	}
}

func TestMigrationManager_Down(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "down.db")
	if err := Migrate(dbPath); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Steps(-1); err != nil {
		t.Fatalf("Failed to step down: %v", err)
	}
	version, _, _ := mgr.Version()
	if version != 1 {
		t.Errorf("Expected version 1 after one step down, got %d", version)
	}

	if err := mgr.Down(); err != nil {
		t.Fatalf("Failed to roll back: %v", err)
	}
	version, _, err = mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get version: %v", err)
	}
	if version != 0 {
		t.Errorf("Expected version 0 after Down, got %d", version)
	}
}
