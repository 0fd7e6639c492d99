package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/propside/syncd/internal/repository"
)

// APIKeyRepository resolves bearer tokens to companies. Keys are stored as
// SHA-256 hashes, never in the clear.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// HashKey returns the stored form of an API key
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Create registers a key for a company
func (r *APIKeyRepository) Create(ctx context.Context, companyID, key, label string) error {
	query := `INSERT INTO api_keys (key_hash, company_id, label, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, HashKey(key), companyID, label, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// Resolve maps a presented key to its company ID
func (r *APIKeyRepository) Resolve(ctx context.Context, key string) (string, error) {
	query := `SELECT company_id FROM api_keys WHERE key_hash = ?`
	var companyID string
	err := r.db.QueryRowContext(ctx, query, HashKey(key)).Scan(&companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}
	return companyID, nil
}
