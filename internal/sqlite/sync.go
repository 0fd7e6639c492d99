package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/repository"
)

// SyncStateRepository implements sync.StateRepository for SQLite
type SyncStateRepository struct {
	db *DB
}

// NewSyncStateRepository creates a new SyncStateRepository
func NewSyncStateRepository(db *DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// Create creates a sync state for a document
func (r *SyncStateRepository) Create(ctx context.Context, companyID string, st *syncdom.State) error {
	query := `
		INSERT INTO sync_states (
			id, document_id, company_id, provider, cloud_file_id, status,
			last_sync_at, last_local_edit_at, last_cloud_edit_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		st.ID,
		st.DocumentID,
		companyID,
		st.Provider,
		st.CloudFileID,
		st.Status,
		st.LastSyncAt,
		st.LastLocalEditAt,
		st.LastCloudEditAt,
		st.CreatedAt,
		st.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create sync state: %w", err)
	}
	return nil
}

const syncStateColumns = `
	id, document_id, company_id, provider, cloud_file_id, status,
	last_sync_at, last_local_edit_at, last_cloud_edit_at, created_at, updated_at
`

// GetByDocument retrieves the sync state for a document
func (r *SyncStateRepository) GetByDocument(ctx context.Context, companyID, documentID string) (*syncdom.State, error) {
	query := `SELECT ` + syncStateColumns + ` FROM sync_states WHERE document_id = ? AND company_id = ?`
	st, err := scanSyncState(r.db.QueryRowContext(ctx, query, documentID, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return st, nil
}

// Update persists status and edit timestamps
func (r *SyncStateRepository) Update(ctx context.Context, companyID string, st *syncdom.State) error {
	query := `
		UPDATE sync_states
		SET status = ?, last_sync_at = ?, last_local_edit_at = ?, last_cloud_edit_at = ?, updated_at = ?
		WHERE id = ? AND company_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		st.Status,
		st.LastSyncAt,
		st.LastLocalEditAt,
		st.LastCloudEditAt,
		st.UpdatedAt,
		st.ID,
		companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns all sync states for a company
func (r *SyncStateRepository) List(ctx context.Context, companyID string) ([]syncdom.State, error) {
	query := `SELECT ` + syncStateColumns + ` FROM sync_states WHERE company_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync states: %w", err)
	}
	defer rows.Close()

	var states []syncdom.State
	for rows.Next() {
		st, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *st)
	}
	return states, rows.Err()
}

func scanSyncState(row rowScanner) (*syncdom.State, error) {
	var st syncdom.State
	err := row.Scan(
		&st.ID,
		&st.DocumentID,
		&st.CompanyID,
		&st.Provider,
		&st.CloudFileID,
		&st.Status,
		&st.LastSyncAt,
		&st.LastLocalEditAt,
		&st.LastCloudEditAt,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ConflictRepository implements sync.ConflictRepository for SQLite
type ConflictRepository struct {
	db *DB
}

// NewConflictRepository creates a new ConflictRepository
func NewConflictRepository(db *DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

// Create records a detected conflict
func (r *ConflictRepository) Create(ctx context.Context, companyID string, c *syncdom.Conflict) error {
	query := `
		INSERT INTO sync_conflicts (
			id, document_id, company_id, local_version_id, cloud_version_id,
			resolution, resolved_by, resolved_at, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.DocumentID,
		companyID,
		c.LocalVersionID,
		c.CloudVersionID,
		c.Resolution,
		c.ResolvedBy,
		c.ResolvedAt,
		c.DetectedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create conflict: %w", err)
	}
	return nil
}

const conflictColumns = `
	id, document_id, company_id, local_version_id, cloud_version_id,
	resolution, resolved_by, resolved_at, detected_at
`

// Get retrieves a conflict by ID
func (r *ConflictRepository) Get(ctx context.Context, companyID, id string) (*syncdom.Conflict, error) {
	query := `SELECT ` + conflictColumns + ` FROM sync_conflicts WHERE id = ? AND company_id = ?`
	c, err := scanConflict(r.db.QueryRowContext(ctx, query, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}
	return c, nil
}

// PendingByDocument returns the newest unresolved conflict for a document
func (r *ConflictRepository) PendingByDocument(ctx context.Context, companyID, documentID string) (*syncdom.Conflict, error) {
	query := `
		SELECT ` + conflictColumns + `
		FROM sync_conflicts
		WHERE document_id = ? AND company_id = ? AND resolution IS NULL
		ORDER BY detected_at DESC
		LIMIT 1
	`
	c, err := scanConflict(r.db.QueryRowContext(ctx, query, documentID, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending conflict: %w", err)
	}
	return c, nil
}

// MarkResolved stores the resolution outcome
func (r *ConflictRepository) MarkResolved(ctx context.Context, companyID string, c *syncdom.Conflict) error {
	query := `
		UPDATE sync_conflicts
		SET resolution = ?, resolved_by = ?, resolved_at = ?
		WHERE id = ? AND company_id = ? AND resolution IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Resolution,
		c.ResolvedBy,
		c.ResolvedAt,
		c.ID,
		companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check resolve result: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanConflict(row rowScanner) (*syncdom.Conflict, error) {
	var c syncdom.Conflict
	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.CompanyID,
		&c.LocalVersionID,
		&c.CloudVersionID,
		&c.Resolution,
		&c.ResolvedBy,
		&c.ResolvedAt,
		&c.DetectedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
