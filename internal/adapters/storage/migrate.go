package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
)

// migrations are applied in order after the base schema exists.
// Each entry runs inside its own transaction together with the
// schema_version bump, so a failed migration leaves the version
// untouched.
var migrations = []string{
	// v1: latest-code lookup scans login_code by email ordered by created_at.
	`CREATE INDEX IF NOT EXISTS idx_login_code_email ON login_code(email, created_at)`,
	// v2: slot collision checks and the own-requests view both filter
	// session_request by fixed columns.
	`CREATE INDEX IF NOT EXISTS idx_session_request_slot ON session_request(day, time);
	 CREATE INDEX IF NOT EXISTS idx_session_request_email ON session_request(user_email)`,
}

// LatestSchemaVersion returns the version the database reaches after
// MigrateDB has applied every known migration.
func LatestSchemaVersion() int {
	return len(migrations)
}

// MigrateDB brings an initialized database up to the latest schema version.
// dbPath is the on-disk database file; a ".bak" copy is written before any
// migration runs. Pass "" (or ":memory:") to skip the backup.
// PRE: InitDB has been run against db
// POST: schema_version reports LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := currentSchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= len(migrations) {
		return nil
	}

	if err := backupDBFile(dbPath); err != nil {
		return fmt.Errorf("pre-migration backup failed: %w", err)
	}

	for v := current; v < len(migrations); v++ {
		if err := applyMigration(db, v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		slog.Info("schema_migrated", "version", v+1)
	}

	return nil
}

// backupDBFile copies the database file aside before a migration runs.
func backupDBFile(dbPath string) error {
	if dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	data, err := os.ReadFile(dbPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	backup := dbPath + ".bak"
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return err
	}
	slog.Info("db_backup_written", "path", backup)
	return nil
}

func currentSchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
			return 0, fmt.Errorf("failed to seed schema_version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return version, nil
}

func applyMigration(db *sql.DB, version int, stmt string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE schema_version SET version = ?", version); err != nil {
		return err
	}
	return tx.Commit()
}
