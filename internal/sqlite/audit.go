package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/propside/syncd/internal/domain/audit"
)

// AuditRepository implements audit.Repository for SQLite
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record writes one audit entry
func (r *AuditRepository) Record(ctx context.Context, companyID string, entry *audit.Entry) error {
	var details any
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = string(data)
	}

	query := `
		INSERT INTO audit_log (company_id, action, entity_type, entity_id, user_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		companyID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns audit entries matching the options, newest first
func (r *AuditRepository) List(ctx context.Context, companyID string, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, company_id, action, entity_type, entity_id, user_id, details, created_at
		FROM audit_log
		WHERE company_id = ?
	`
	args := []any{companyID}
	if opts.Action != "" {
		query += ` AND action = ?`
		args = append(args, opts.Action)
	}
	if opts.EntityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, opts.EntityType)
	}
	if opts.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, opts.EntityID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var details sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.UserID,
			&details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if details.Valid {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
