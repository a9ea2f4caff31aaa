package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	conn, err := InitDB(path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	var name string
	err = conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='audit_events'`).Scan(&name)
	if err != nil {
		t.Fatalf("audit_events table missing: %v", err)
	}

	// Re-running the schema must be harmless.
	if err := ensureSchema(conn); err != nil {
		t.Fatalf("ensureSchema second run: %v", err)
	}
}
