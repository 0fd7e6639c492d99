package sync

import (
	"context"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/version"
)

// StateRepository provides persistence for document sync states.
type StateRepository interface {
	Create(ctx context.Context, companyID string, st *State) error
	GetByDocument(ctx context.Context, companyID, documentID string) (*State, error)
	Update(ctx context.Context, companyID string, st *State) error
	List(ctx context.Context, companyID string) ([]State, error)
}

// ConflictRepository provides persistence for sync conflicts.
type ConflictRepository interface {
	Create(ctx context.Context, companyID string, c *Conflict) error
	Get(ctx context.Context, companyID, id string) (*Conflict, error)
	PendingByDocument(ctx context.Context, companyID, documentID string) (*Conflict, error)
	MarkResolved(ctx context.Context, companyID string, c *Conflict) error
}

// VersionStore is the slice of the version store the tracker depends on.
type VersionStore interface {
	Append(ctx context.Context, companyID string, req version.AppendRequest) (*version.Version, error)
	Get(ctx context.Context, companyID, id string) (*version.Version, error)
	Latest(ctx context.Context, companyID, documentID string) (*version.Version, error)
	History(ctx context.Context, companyID, documentID string, limit int) ([]version.Version, error)
	LatestAll(ctx context.Context, companyID string) ([]version.Version, error)
	ListDocuments(ctx context.Context, companyID string) ([]version.Document, error)
}

// AuditRecorder records audit events; failures never propagate.
type AuditRecorder interface {
	Record(ctx context.Context, companyID string, entry audit.Entry)
}
