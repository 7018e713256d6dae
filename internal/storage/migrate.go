package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every .up.sql migration newer than the recorded schema
// version, oldest first. Each migration runs in its own transaction together
// with the version bump, so a failed script leaves the version untouched.
func MigrateUp(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	names, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		version, verErr := migrationVersion(name)
		if verErr != nil {
			return verErr
		}
		if version <= current {
			continue
		}
		if applyErr := applyMigration(db, name, version); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

// MigrateDown unwinds applied .down.sql migrations, newest first.
func MigrateDown(db *sql.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	names, err := migrationNames(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	for _, name := range names {
		version, verErr := migrationVersion(name)
		if verErr != nil {
			return verErr
		}
		if version > current {
			continue
		}
		if applyErr := applyMigration(db, name, version-1); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

func migrationNames(suffix string) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("storage: glob migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// migrationVersion parses the numeric prefix of a migration file name,
// e.g. "migrations/0001_init.up.sql" -> 1.
func migrationVersion(name string) (int, error) {
	base := path.Base(name)
	prefix, _, ok := strings.Cut(base, "_")
	if !ok {
		return 0, fmt.Errorf("storage: migration %s has no version prefix", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, fmt.Errorf("storage: migration %s has invalid version %q", name, prefix)
	}
	return version, nil
}

func applyMigration(db *sql.DB, name string, toVersion int) error {
	script, err := migrationFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("storage: read migration %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin migration %s: %w", name, err)
	}
	if _, execErr := tx.Exec(string(script)); execErr != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: apply migration %s: %w", name, execErr)
	}
	if _, execErr := tx.Exec(`DELETE FROM schema_version`); execErr != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: clear schema version: %w", execErr)
	}
	if _, execErr := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, toVersion); execErr != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storage: record schema version %d: %w", toVersion, execErr)
	}
	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("storage: commit migration %s: %w", name, commitErr)
	}
	return nil
}

// schemaVersion reads the recorded version, creating the bookkeeping table
// on first use. A database without a version row is at version 0.
func schemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("storage: init schema version: %w", err)
	}
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: read schema version: %w", err)
	}
	return version, nil
}
