package mcp

import "encoding/json"

// CreateDocumentParams registers a document.
type CreateDocumentParams struct {
	ID      string `json:"id,omitempty"`
	DocType string `json:"doc_type"`
	Title   string `json:"title"`
}

// AppendVersionParams records a snapshot directly in the version store.
type AppendVersionParams struct {
	DocumentID string          `json:"document_id"`
	Source     string          `json:"source"`
	Snapshot   json.RawMessage `json:"snapshot"`
}

// RecordEditParams is the sync-aware write path.
type RecordEditParams struct {
	DocumentID string          `json:"document_id"`
	Source     string          `json:"source"`
	Snapshot   json.RawMessage `json:"snapshot"`
}

// GetLatestVersionParams fetches a document's current version.
type GetLatestVersionParams struct {
	DocumentID string `json:"document_id"`
}

// GetVersionHistoryParams lists versions, newest first.
type GetVersionHistoryParams struct {
	DocumentID string `json:"document_id"`
	Limit      int    `json:"limit,omitempty"`
}

// DiffVersionsParams compares two stored versions.
type DiffVersionsParams struct {
	OldVersionID string `json:"old_version_id"`
	NewVersionID string `json:"new_version_id"`
}

// InitSyncParams binds a document to a cloud file.
type InitSyncParams struct {
	DocumentID  string `json:"document_id"`
	Provider    string `json:"provider"`
	CloudFileID string `json:"cloud_file_id"`
}

// SetSyncStatusParams records an integration-reported status.
type SetSyncStatusParams struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// GetSyncStateParams fetches a document's sync state.
type GetSyncStateParams struct {
	DocumentID string `json:"document_id"`
}

// GetConflictParams fetches a document's pending conflict.
type GetConflictParams struct {
	DocumentID string `json:"document_id"`
}

// ResolveConflictParams settles a conflict.
type ResolveConflictParams struct {
	ConflictID     string          `json:"conflict_id"`
	Resolution     string          `json:"resolution"`
	MergedSnapshot json.RawMessage `json:"merged_snapshot,omitempty"`
}

// MergePreviewParams builds a conflict-marker merge of both sides of a
// document's pending conflict.
type MergePreviewParams struct {
	DocumentID string `json:"document_id"`
}

// CreateRuleParams defines a coordination rule.
type CreateRuleParams struct {
	Description   string `json:"description,omitempty"`
	SourceDocType string `json:"source_doc_type"`
	SourceField   string `json:"source_field"`
	TargetDocType string `json:"target_doc_type"`
	TargetField   string `json:"target_field"`
	Transform     string `json:"transform"`
}

// ListRulesParams lists coordination rules.
type ListRulesParams struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

// DeactivateRuleParams turns a rule off.
type DeactivateRuleParams struct {
	RuleID string `json:"rule_id"`
}

// ExecuteRuleParams runs a cascade.
type ExecuteRuleParams struct {
	RuleID       string `json:"rule_id"`
	TriggerDocID string `json:"trigger_doc_id"`
}

// PreviewCascadeParams dry-runs a cascade against a hypothetical source
// value, which need not match anything stored.
type PreviewCascadeParams struct {
	RuleID string          `json:"rule_id"`
	Value  json.RawMessage `json:"value"`
}

// GetCoordinationLogParams filters the coordination log.
type GetCoordinationLogParams struct {
	RuleID       string `json:"rule_id,omitempty"`
	TriggerDocID string `json:"trigger_doc_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// GetRecentAuditParams filters the audit log.
type GetRecentAuditParams struct {
	Action     string `json:"action,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}
