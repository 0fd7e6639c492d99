package sync

import (
	"time"

	"github.com/propside/syncd/internal/domain/version"
)

// Status is a document's sync state with its external editing surface.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSyncing  Status = "syncing"
	StatusSynced   Status = "synced"
	StatusConflict Status = "conflict"
	StatusError    Status = "error"
)

// Provider identifies a cloud storage/editing provider.
type Provider string

const (
	ProviderOneDrive    Provider = "onedrive"
	ProviderGoogleDrive Provider = "google_drive"
	ProviderSharePoint  Provider = "sharepoint"
)

// Valid reports whether the provider is known.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOneDrive, ProviderGoogleDrive, ProviderSharePoint:
		return true
	}
	return false
}

// State tracks one document's binding to an external provider file and the
// derived sync status. Documents without a State are considered idle.
type State struct {
	ID              string     `json:"id"`
	DocumentID      string     `json:"document_id"`
	CompanyID       string     `json:"company_id"`
	Provider        Provider   `json:"provider"`
	CloudFileID     string     `json:"cloud_file_id"`
	Status          Status     `json:"status"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	LastLocalEditAt *time.Time `json:"last_local_edit_at,omitempty"`
	LastCloudEditAt *time.Time `json:"last_cloud_edit_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Resolution selects the outcome of a conflict.
type Resolution string

const (
	ResolutionKeepMP    Resolution = "keep_mp"
	ResolutionKeepCloud Resolution = "keep_cloud"
	ResolutionMerge     Resolution = "merge"
)

// Valid reports whether the resolution is one of the supported strategies.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionKeepMP, ResolutionKeepCloud, ResolutionMerge:
		return true
	}
	return false
}

// Conflict records a divergence between two sources' edits to the same
// document. Conflicts are resolved, never deleted.
type Conflict struct {
	ID             string      `json:"id"`
	DocumentID     string      `json:"document_id"`
	CompanyID      string      `json:"company_id"`
	LocalVersionID string      `json:"local_version_id"`
	CloudVersionID string      `json:"cloud_version_id"`
	Resolution     *Resolution `json:"resolution,omitempty"`
	ResolvedBy     *string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
	DetectedAt     time.Time   `json:"detected_at"`
}

// Resolved reports whether the conflict has already been settled.
func (c *Conflict) Resolved() bool { return c.Resolution != nil }

// ArtifactStatus is a read-only projection of a document's latest version,
// sync status, last editor, and word count. Computed on read, never stored.
type ArtifactStatus struct {
	DocumentID   string          `json:"document_id"`
	Title        string          `json:"title"`
	DocType      string          `json:"doc_type"`
	SyncStatus   Status          `json:"sync_status"`
	Provider     *Provider       `json:"provider,omitempty"`
	LastEditedBy *string         `json:"last_edited_by,omitempty"`
	LastEditedAt *time.Time      `json:"last_edited_at,omitempty"`
	EditSource   *version.Source `json:"edit_source,omitempty"`
	WordCount    int             `json:"word_count"`
}
