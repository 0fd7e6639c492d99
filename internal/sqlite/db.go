package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	// Wait out writer contention instead of failing fast
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations runs the migrations directly (for testing)
// In production, migrations should be run via the migrate CLI or embed package
func (db *DB) RunMigrations() error {
	migration := `
-- Documents table
CREATE TABLE documents (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    doc_type TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_company_documents ON documents(company_id);
CREATE INDEX idx_company_doc_type ON documents(company_id, doc_type);

-- Append-only version store. The (document, number) uniqueness constraint
-- is what serializes concurrent appends.
CREATE TABLE document_versions (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    company_id TEXT NOT NULL,
    version_number INTEGER NOT NULL,
    source TEXT NOT NULL,
    snapshot TEXT NOT NULL,
    diff_summary TEXT,
    created_by TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(document_id, version_number),
    FOREIGN KEY (document_id) REFERENCES documents(id)
);
CREATE INDEX idx_company_versions ON document_versions(company_id);
CREATE INDEX idx_document_versions ON document_versions(document_id, version_number);

-- Sync states
CREATE TABLE sync_states (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL UNIQUE,
    company_id TEXT NOT NULL,
    provider TEXT NOT NULL CHECK(provider IN ('onedrive', 'google_drive', 'sharepoint')),
    cloud_file_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('idle', 'syncing', 'synced', 'conflict', 'error')),
    last_sync_at TIMESTAMP,
    last_local_edit_at TIMESTAMP,
    last_cloud_edit_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (document_id) REFERENCES documents(id)
);
CREATE INDEX idx_company_sync_states ON sync_states(company_id);

-- Sync conflicts
CREATE TABLE sync_conflicts (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    company_id TEXT NOT NULL,
    local_version_id TEXT NOT NULL,
    cloud_version_id TEXT NOT NULL,
    resolution TEXT CHECK(resolution IN ('keep_mp', 'keep_cloud', 'merge')),
    resolved_by TEXT,
    resolved_at TIMESTAMP,
    detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (document_id) REFERENCES documents(id),
    FOREIGN KEY (local_version_id) REFERENCES document_versions(id),
    FOREIGN KEY (cloud_version_id) REFERENCES document_versions(id)
);
CREATE INDEX idx_company_conflicts ON sync_conflicts(company_id);
CREATE INDEX idx_document_conflicts ON sync_conflicts(document_id);

-- Coordination rules
CREATE TABLE coordination_rules (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    description TEXT,
    source_doc_type TEXT NOT NULL,
    source_field TEXT NOT NULL,
    target_doc_type TEXT NOT NULL,
    target_field TEXT NOT NULL,
    transform TEXT NOT NULL CHECK(transform IN ('copy', 'format', 'aggregate', 'reference')),
    active INTEGER NOT NULL DEFAULT 1,
    created_by TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_company_rules ON coordination_rules(company_id);

-- Coordination log
CREATE TABLE coordination_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    trigger_doc_id TEXT NOT NULL,
    trigger_version_id TEXT,
    status TEXT NOT NULL CHECK(status IN ('applied', 'failed', 'skipped')),
    affected_documents TEXT NOT NULL DEFAULT '[]',
    changes_applied TEXT NOT NULL DEFAULT '[]',
    error_message TEXT,
    executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (rule_id) REFERENCES coordination_rules(id)
);
CREATE INDEX idx_company_coordination_log ON coordination_log(company_id);
CREATE INDEX idx_rule_coordination_log ON coordination_log(rule_id);
CREATE INDEX idx_trigger_coordination_log ON coordination_log(trigger_doc_id);

-- Audit log
CREATE TABLE audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company_id TEXT NOT NULL,
    action TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    user_id TEXT,
    details TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_company_audit ON audit_log(company_id);
CREATE INDEX idx_company_audit_action ON audit_log(company_id, action);

-- API keys map bearer tokens to companies
CREATE TABLE api_keys (
    key_hash TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    label TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
