package version

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/diff"
	"github.com/propside/syncd/internal/repository"
	"github.com/propside/syncd/internal/snapshot"
)

// maxAppendRetries bounds how often a losing writer re-reads the current
// maximum before giving up on a contended document.
const maxAppendRetries = 5

// DefaultHistoryLimit caps history reads when the caller passes no limit.
const DefaultHistoryLimit = 50

// Service is the version store: the append-only source of truth every other
// component reads from.
type Service struct {
	documents DocumentRepository
	versions  VersionRepository
	auditor   AuditRecorder
	logger    *slog.Logger
}

// NewService creates a new version store service.
func NewService(documents DocumentRepository, versions VersionRepository, auditor AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{documents: documents, versions: versions, auditor: auditor, logger: logger}
}

// CreateDocumentRequest describes a document registration from the
// authoring layer.
type CreateDocumentRequest struct {
	ID      string
	DocType string
	Title   string
}

// CreateDocument registers a document on behalf of the authoring layer.
func (s *Service) CreateDocument(ctx context.Context, companyID string, req CreateDocumentRequest) (*Document, error) {
	if companyID == "" || req.DocType == "" {
		return nil, ErrInvalidInput
	}
	doc := &Document{
		ID:        req.ID,
		CompanyID: companyID,
		DocType:   req.DocType,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := s.documents.Create(ctx, companyID, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

// GetDocument returns a document by ID within the tenant.
func (s *Service) GetDocument(ctx context.Context, companyID, id string) (*Document, error) {
	doc, err := s.documents.Get(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns every document in the tenant.
func (s *Service) ListDocuments(ctx context.Context, companyID string) ([]Document, error) {
	return s.documents.List(ctx, companyID)
}

// AppendRequest describes one snapshot write.
type AppendRequest struct {
	DocumentID string
	Source     Source
	Snapshot   snapshot.Value
	CreatedBy  *string
}

// Append persists a new immutable version. The number is one greater than
// the current maximum (1 for the first version) and the diff summary is
// computed against the immediately preceding version. Number assignment is
// a conditional insert on the (document, number) uniqueness constraint; a
// losing writer re-reads the maximum and retries.
func (s *Service) Append(ctx context.Context, companyID string, req AppendRequest) (*Version, error) {
	if req.DocumentID == "" || !req.Source.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetDocument(ctx, companyID, req.DocumentID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxAppendRetries; attempt++ {
		prev, err := s.versions.Latest(ctx, companyID, req.DocumentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading latest version: %w", err)
		}

		next := 1
		var summary *diff.Summary
		if prev != nil {
			next = prev.Number + 1
			sum := diff.Summarize(diff.Compute(prev.Snapshot, req.Snapshot), prev.Snapshot, req.Snapshot)
			summary = &sum
		}

		v := &Version{
			ID:         uuid.NewString(),
			DocumentID: req.DocumentID,
			CompanyID:  companyID,
			Number:     next,
			Source:     req.Source,
			Snapshot:   req.Snapshot,
			Diff:       summary,
			CreatedBy:  req.CreatedBy,
			CreatedAt:  time.Now(),
		}

		err = s.versions.Insert(ctx, companyID, v)
		if err == nil {
			if s.auditor != nil {
				s.auditor.Record(ctx, companyID, audit.Entry{
					Action:     audit.ActionVersionRecorded,
					EntityType: "document_version",
					EntityID:   v.ID,
					UserID:     req.CreatedBy,
					Details: map[string]any{
						"document_id":    v.DocumentID,
						"version_number": v.Number,
						"source":         string(v.Source),
					},
				})
			}
			return v, nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Debug("version number contention, retrying",
				"document_id", req.DocumentID, "number", next, "attempt", attempt+1)
			continue
		}
		return nil, fmt.Errorf("inserting version: %w", err)
	}
	return nil, fmt.Errorf("appending version for %s: contention not resolved after %d attempts", req.DocumentID, maxAppendRetries)
}

// Latest returns the current version of a document.
func (s *Service) Latest(ctx context.Context, companyID, documentID string) (*Version, error) {
	v, err := s.versions.Latest(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("loading latest version: %w", err)
	}
	return v, nil
}

// Get returns one version by ID.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Version, error) {
	v, err := s.versions.Get(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, fmt.Errorf("loading version: %w", err)
	}
	return v, nil
}

// History returns a document's versions, newest first.
func (s *Service) History(ctx context.Context, companyID, documentID string, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := s.GetDocument(ctx, companyID, documentID); err != nil {
		return nil, err
	}
	history, err := s.versions.History(ctx, companyID, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return history, nil
}

// LatestAll returns the latest version of every document in the tenant.
func (s *Service) LatestAll(ctx context.Context, companyID string) ([]Version, error) {
	return s.versions.LatestAll(ctx, companyID)
}

// DiffVersions computes a structured diff between two stored versions of
// the same document. Pure read: the store is never mutated.
func (s *Service) DiffVersions(ctx context.Context, companyID, oldID, newID string) (diff.Result, error) {
	older, err := s.Get(ctx, companyID, oldID)
	if err != nil {
		return diff.Result{}, err
	}
	newer, err := s.Get(ctx, companyID, newID)
	if err != nil {
		return diff.Result{}, err
	}
	if older.DocumentID != newer.DocumentID {
		return diff.Result{}, ErrDocumentMismatch
	}
	return diff.Compute(older.Snapshot, newer.Snapshot), nil
}
