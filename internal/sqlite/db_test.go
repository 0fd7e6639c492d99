package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	// A shared in-memory database needs a single connection, and it also
	// keeps concurrent-writer tests deterministic.
	db.SetMaxOpenConns(1)

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertDocument(t *testing.T, db *DB, id, companyID, docType string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO documents (id, company_id, doc_type, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, companyID, docType, "Test "+docType, time.Now())
	require.NoError(t, err)
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"documents",
		"document_versions",
		"sync_states",
		"sync_conflicts",
		"coordination_rules",
		"coordination_log",
		"audit_log",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestVersionUniqueness verifies the append serialization constraint
func TestVersionUniqueness(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	insert := `
		INSERT INTO document_versions (id, document_id, company_id, version_number, source, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, insert, "v1", "doc1", "co1", 1, "editor", "{}", time.Now())
	require.NoError(t, err)

	// Same number again must be rejected
	_, err = db.ExecContext(ctx, insert, "v2", "doc1", "co1", 1, "editor", "{}", time.Now())
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))
}

// TestSyncStateConstraints verifies provider and status CHECK constraints
func TestSyncStateConstraints(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	insert := `
		INSERT INTO sync_states (id, document_id, company_id, provider, cloud_file_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	_, err := db.ExecContext(ctx, insert, "s1", "doc1", "co1", "dropbox", "f1", "idle", now, now)
	require.Error(t, err, "should reject unknown provider")

	_, err = db.ExecContext(ctx, insert, "s1", "doc1", "co1", "onedrive", "f1", "unknown", now, now)
	require.Error(t, err, "should reject unknown status")

	_, err = db.ExecContext(ctx, insert, "s1", "doc1", "co1", "onedrive", "f1", "idle", now, now)
	require.NoError(t, err)
}
