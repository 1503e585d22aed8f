package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getIndexNames returns sorted index names from sqlite_master.
func getIndexNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestInitDB_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	want := []string{"account", "login_code", "session_request"}
	got := getTableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("table names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

func TestMigrateDB_ReachesLatestVersion(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := MigrateDB(db, ""); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	var version int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to read schema_version: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	want := []string{"idx_login_code_email", "idx_session_request_email", "idx_session_request_slot"}
	got := getIndexNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("index names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := MigrateDB(db, ""); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	if err := MigrateDB(db, ""); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	// schema_version must hold a single row.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("failed to count schema_version rows: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_version rows = %d, want 1", count)
	}
}

func TestMigrateDB_WritesBackupFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ascend.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := MigrateDB(db, dbPath); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	if _, err := os.Stat(dbPath + ".bak"); err != nil {
		t.Errorf("expected backup file: %v", err)
	}

	// A second run has no pending migrations and must not touch the backup.
	if err := os.Remove(dbPath + ".bak"); err != nil {
		t.Fatalf("failed to remove backup: %v", err)
	}
	if err := MigrateDB(db, dbPath); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	if _, err := os.Stat(dbPath + ".bak"); !os.IsNotExist(err) {
		t.Errorf("backup recreated with no pending migrations")
	}
}
