package coordination

import (
	"context"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/version"
)

// RuleRepository provides persistence for coordination rules.
type RuleRepository interface {
	Create(ctx context.Context, companyID string, r *Rule) error
	Get(ctx context.Context, companyID, id string) (*Rule, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]Rule, error)
	SetActive(ctx context.Context, companyID, id string, active bool) error
}

// LogRepository provides persistence for the coordination audit trail.
type LogRepository interface {
	Append(ctx context.Context, companyID string, entry *LogEntry) error
	List(ctx context.Context, companyID string, q LogQuery) ([]LogEntry, error)
}

// VersionStore is the slice of the version store the rule engine depends on.
type VersionStore interface {
	Append(ctx context.Context, companyID string, req version.AppendRequest) (*version.Version, error)
	Latest(ctx context.Context, companyID, documentID string) (*version.Version, error)
	LatestAll(ctx context.Context, companyID string) ([]version.Version, error)
	ListDocuments(ctx context.Context, companyID string) ([]version.Document, error)
}

// AuditRecorder records audit events; failures never propagate.
type AuditRecorder interface {
	Record(ctx context.Context, companyID string, entry audit.Entry)
}
