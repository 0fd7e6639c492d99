// Package audit is the engine's audit log sink. Recording is fire-and-forget:
// a failed audit write is logged and swallowed, never failing the operation
// that produced it.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Repository persists audit entries.
type Repository interface {
	Record(ctx context.Context, companyID string, entry *Entry) error
	List(ctx context.Context, companyID string, opts ListOptions) ([]Entry, error)
}

// Service handles audit log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record writes an audit entry. Storage failures are logged at warn level
// and otherwise ignored.
func (s *Service) Record(ctx context.Context, companyID string, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CompanyID = companyID
	if err := s.repo.Record(ctx, companyID, &entry); err != nil {
		s.logger.Warn("audit record failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err)
	}
}

// Recent lists audit entries for a tenant, newest first.
func (s *Service) Recent(ctx context.Context, companyID string, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, companyID, opts)
}
