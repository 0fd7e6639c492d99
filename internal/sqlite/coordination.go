package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/propside/syncd/internal/domain/coordination"
	"github.com/propside/syncd/internal/repository"
)

// RuleRepository implements coordination.RuleRepository for SQLite
type RuleRepository struct {
	db *DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create stores a coordination rule
func (r *RuleRepository) Create(ctx context.Context, companyID string, rule *coordination.Rule) error {
	query := `
		INSERT INTO coordination_rules (
			id, company_id, description, source_doc_type, source_field,
			target_doc_type, target_field, transform, active, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		companyID,
		nullString(rule.Description),
		rule.SourceDocType,
		rule.SourceField,
		rule.TargetDocType,
		rule.TargetField,
		rule.Transform,
		rule.Active,
		rule.CreatedBy,
		rule.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

const ruleColumns = `
	id, company_id, description, source_doc_type, source_field,
	target_doc_type, target_field, transform, active, created_by, created_at
`

// Get retrieves a rule by ID
func (r *RuleRepository) Get(ctx context.Context, companyID, id string) (*coordination.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM coordination_rules WHERE id = ? AND company_id = ?`
	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id, companyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// List returns the company's rules, newest first
func (r *RuleRepository) List(ctx context.Context, companyID string, activeOnly bool) ([]coordination.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM coordination_rules WHERE company_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []coordination.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// SetActive flips a rule's active flag
func (r *RuleRepository) SetActive(ctx context.Context, companyID, id string, active bool) error {
	query := `UPDATE coordination_rules SET active = ? WHERE id = ? AND company_id = ?`
	result, err := r.db.ExecContext(ctx, query, active, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
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

func scanRule(row rowScanner) (*coordination.Rule, error) {
	var rule coordination.Rule
	var description sql.NullString
	err := row.Scan(
		&rule.ID,
		&rule.CompanyID,
		&description,
		&rule.SourceDocType,
		&rule.SourceField,
		&rule.TargetDocType,
		&rule.TargetField,
		&rule.Transform,
		&rule.Active,
		&rule.CreatedBy,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Description = description.String
	return &rule, nil
}

// CoordinationLogRepository implements coordination.LogRepository for SQLite
type CoordinationLogRepository struct {
	db *DB
}

// NewCoordinationLogRepository creates a new CoordinationLogRepository
func NewCoordinationLogRepository(db *DB) *CoordinationLogRepository {
	return &CoordinationLogRepository{db: db}
}

// Append writes the single log record of one execution attempt. The
// affected-documents and changes lists are stored as JSON.
func (r *CoordinationLogRepository) Append(ctx context.Context, companyID string, entry *coordination.LogEntry) error {
	affected, err := encodeJSONList(entry.AffectedDocuments)
	if err != nil {
		return err
	}
	changes, err := encodeJSONList(entry.ChangesApplied)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO coordination_log (
			company_id, rule_id, trigger_doc_id, trigger_version_id,
			status, affected_documents, changes_applied, error_message, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		companyID,
		entry.RuleID,
		entry.TriggerDocID,
		nullString(entry.TriggerVersionID),
		entry.Status,
		affected,
		changes,
		nullString(entry.ErrorMessage),
		entry.ExecutedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append coordination log: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// List returns log entries matching the query, newest first
func (r *CoordinationLogRepository) List(ctx context.Context, companyID string, q coordination.LogQuery) ([]coordination.LogEntry, error) {
	query := `
		SELECT id, company_id, rule_id, trigger_doc_id, trigger_version_id,
		       status, affected_documents, changes_applied, error_message, executed_at
		FROM coordination_log
		WHERE company_id = ?
	`
	args := []any{companyID}
	if q.RuleID != "" {
		query += ` AND rule_id = ?`
		args = append(args, q.RuleID)
	}
	if q.TriggerDocID != "" {
		query += ` AND trigger_doc_id = ?`
		args = append(args, q.TriggerDocID)
	}
	query += ` ORDER BY id DESC`
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coordination log: %w", err)
	}
	defer rows.Close()

	var entries []coordination.LogEntry
	for rows.Next() {
		var entry coordination.LogEntry
		var triggerVersion, affected, changes, errorMessage sql.NullString
		err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.RuleID,
			&entry.TriggerDocID,
			&triggerVersion,
			&entry.Status,
			&affected,
			&changes,
			&errorMessage,
			&entry.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coordination log: %w", err)
		}
		entry.TriggerVersionID = triggerVersion.String
		entry.ErrorMessage = errorMessage.String
		entry.AffectedDocuments = []string{}
		entry.ChangesApplied = []coordination.Change{}
		if err := decodeJSONList(affected, &entry.AffectedDocuments); err != nil {
			return nil, err
		}
		if err := decodeJSONList(changes, &entry.ChangesApplied); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func encodeJSONList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	if string(data) == "null" {
		return "[]", nil
	}
	return string(data), nil
}

func decodeJSONList(raw sql.NullString, dest any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.String), dest); err != nil {
		return fmt.Errorf("failed to decode list: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
