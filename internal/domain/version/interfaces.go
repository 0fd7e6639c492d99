package version

import (
	"context"

	"github.com/propside/syncd/internal/domain/audit"
)

// DocumentRepository provides persistence for documents.
type DocumentRepository interface {
	Create(ctx context.Context, companyID string, doc *Document) error
	Get(ctx context.Context, companyID, id string) (*Document, error)
	List(ctx context.Context, companyID string) ([]Document, error)
}

// VersionRepository provides append-only persistence for versions. Insert
// must enforce uniqueness on (document_id, version_number) and return
// repository.ErrDuplicate when a concurrent writer claimed the number first.
type VersionRepository interface {
	Insert(ctx context.Context, companyID string, v *Version) error
	Get(ctx context.Context, companyID, id string) (*Version, error)
	Latest(ctx context.Context, companyID, documentID string) (*Version, error)
	History(ctx context.Context, companyID, documentID string, limit int) ([]Version, error)
	// LatestAll returns the latest version of every document in a tenant.
	LatestAll(ctx context.Context, companyID string) ([]Version, error)
}

// AuditRecorder records audit events; failures never propagate.
type AuditRecorder interface {
	Record(ctx context.Context, companyID string, entry audit.Entry)
}
