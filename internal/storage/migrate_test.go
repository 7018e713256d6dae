package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateUpDownUp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	assertTableExists(t, db, "settings")
	assertTableExists(t, db, "timers")
	assertTableExists(t, db, "activity_log")

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if tableExists(t, db, "timers") {
		t.Fatal("expected timers table dropped")
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("re-apply migrate up: %v", err)
	}
	assertTableExists(t, db, "timers")
}

func TestMigrateTracksSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "version-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	version, err := schemaVersion(db)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 0 {
		t.Fatalf("expected fresh database at version 0, got %d", version)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	version, err = schemaVersion(db)
	if err != nil {
		t.Fatalf("schema version after up: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1 after up, got %d", version)
	}

	// already-applied migrations are skipped on a second run
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
	row := db.QueryRow(`SELECT COUNT(*) FROM schema_version`)
	var rows int
	if err := row.Scan(&rows); err != nil {
		t.Fatalf("count version rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected a single version row, got %d", rows)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	version, err = schemaVersion(db)
	if err != nil {
		t.Fatalf("schema version after down: %v", err)
	}
	if version != 0 {
		t.Fatalf("expected version 0 after down, got %d", version)
	}
}

func TestMigrationVersionParsing(t *testing.T) {
	version, err := migrationVersion("migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("parse version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if _, err := migrationVersion("migrations/init.up.sql"); err == nil {
		t.Fatal("expected error for missing version prefix")
	}
	if _, err := migrationVersion("migrations/zz_init.up.sql"); err == nil {
		t.Fatal("expected error for non-numeric version prefix")
	}
}

func assertTableExists(t *testing.T, db *sql.DB, name string) {
	t.Helper()
	if !tableExists(t, db, name) {
		t.Fatalf("expected table %s to exist", name)
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	row := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name)
	var count int
	if err := row.Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count > 0
}
