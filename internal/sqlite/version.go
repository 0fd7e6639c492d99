package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/propside/syncd/internal/domain/diff"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/repository"
	"github.com/propside/syncd/internal/snapshot"
)

// VersionRepository implements version.VersionRepository for SQLite
type VersionRepository struct {
	db *DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Insert appends a version row. The UNIQUE(document_id, version_number)
// constraint turns concurrent appends of the same number into
// repository.ErrDuplicate, which the service retries.
func (r *VersionRepository) Insert(ctx context.Context, companyID string, v *version.Version) error {
	snap, err := json.Marshal(v.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var summary any
	if v.Diff != nil {
		data, err := json.Marshal(v.Diff)
		if err != nil {
			return fmt.Errorf("failed to encode diff summary: %w", err)
		}
		summary = string(data)
	}

	query := `
		INSERT INTO document_versions (
			id, document_id, company_id, version_number, source,
			snapshot, diff_summary, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		v.ID,
		v.DocumentID,
		companyID,
		v.Number,
		v.Source,
		string(snap),
		summary,
		v.CreatedBy,
		v.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

const versionColumns = `
	id, document_id, company_id, version_number, source,
	snapshot, diff_summary, created_by, created_at
`

// Get retrieves a version by ID
func (r *VersionRepository) Get(ctx context.Context, companyID, id string) (*version.Version, error) {
	query := `SELECT ` + versionColumns + ` FROM document_versions WHERE id = ? AND company_id = ?`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

// Latest returns the highest-numbered version of a document
func (r *VersionRepository) Latest(ctx context.Context, companyID, documentID string) (*version.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = ? AND company_id = ?
		ORDER BY version_number DESC
		LIMIT 1
	`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, documentID, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}
	return v, nil
}

// History returns a document's versions, newest first
func (r *VersionRepository) History(ctx context.Context, companyID, documentID string, limit int) ([]version.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = ? AND company_id = ?
		ORDER BY version_number DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, documentID, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

// LatestAll returns the latest version of every document in the company
func (r *VersionRepository) LatestAll(ctx context.Context, companyID string) ([]version.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE company_id = ? AND (document_id, version_number) IN (
			SELECT document_id, MAX(version_number)
			FROM document_versions
			WHERE company_id = ?
			GROUP BY document_id
		)
		ORDER BY document_id
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest versions: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*version.Version, error) {
	var v version.Version
	var snap string
	var summary sql.NullString
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.CompanyID,
		&v.Number,
		&v.Source,
		&snap,
		&summary,
		&v.CreatedBy,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := snapshot.Parse([]byte(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	v.Snapshot = parsed
	if summary.Valid {
		var s diff.Summary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("failed to decode diff summary: %w", err)
		}
		v.Diff = &s
	}
	return &v, nil
}

func collectVersions(rows *sql.Rows) ([]version.Version, error) {
	var versions []version.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}
