package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/repository"
)

// DocumentRepository implements version.DocumentRepository for SQLite
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, companyID string, doc *version.Document) error {
	query := `
		INSERT INTO documents (id, company_id, doc_type, title, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		companyID,
		doc.DocType,
		doc.Title,
		doc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(ctx context.Context, companyID, id string) (*version.Document, error) {
	query := `
		SELECT id, company_id, doc_type, title, created_at
		FROM documents
		WHERE id = ? AND company_id = ?
	`
	var doc version.Document
	err := r.db.QueryRowContext(ctx, query, id, companyID).Scan(
		&doc.ID,
		&doc.CompanyID,
		&doc.DocType,
		&doc.Title,
		&doc.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// List returns all documents for a company, oldest first
func (r *DocumentRepository) List(ctx context.Context, companyID string) ([]version.Document, error) {
	query := `
		SELECT id, company_id, doc_type, title, created_at
		FROM documents
		WHERE company_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []version.Document
	for rows.Next() {
		var doc version.Document
		if err := rows.Scan(&doc.ID, &doc.CompanyID, &doc.DocType, &doc.Title, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
