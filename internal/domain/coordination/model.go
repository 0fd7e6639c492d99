package coordination

import (
	"time"

	"github.com/propside/syncd/internal/snapshot"
)

// Transform names a value transformation applied during a cascade. The set
// is closed: rules reference transforms by name and the engine owns the
// implementations.
type Transform string

const (
	TransformCopy      Transform = "copy"
	TransformFormat    Transform = "format"
	TransformAggregate Transform = "aggregate"
	TransformReference Transform = "reference"
)

// Valid reports whether t names a known transform.
func (t Transform) Valid() bool {
	switch t {
	case TransformCopy, TransformFormat, TransformAggregate, TransformReference:
		return true
	}
	return false
}

// Rule links a field in documents of one type to a field in documents of
// another type. When the source field changes, the transformed value is
// pushed to every target document of the company.
type Rule struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	Description   string    `json:"description,omitempty"`
	SourceDocType string    `json:"source_doc_type"`
	SourceField   string    `json:"source_field"`
	TargetDocType string    `json:"target_doc_type"`
	TargetField   string    `json:"target_field"`
	Transform     Transform `json:"transform"`
	Active        bool      `json:"active"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LogStatus classifies one coordination log line.
type LogStatus string

const (
	LogApplied LogStatus = "applied"
	LogFailed  LogStatus = "failed"
	LogSkipped LogStatus = "skipped"
)

// LogEntry records one rule execution attempt. Exactly one entry is
// written per Execute call, whatever the outcome: it carries the full list
// of documents touched and the field changes applied, and is the only
// durable record of why a cascade did or did not happen.
type LogEntry struct {
	ID                int64     `json:"id"`
	CompanyID         string    `json:"company_id"`
	RuleID            string    `json:"rule_id"`
	TriggerDocID      string    `json:"trigger_doc_id"`
	TriggerVersionID  string    `json:"trigger_version_id,omitempty"`
	Status            LogStatus `json:"status"`
	AffectedDocuments []string  `json:"affected_documents"`
	ChangesApplied    []Change  `json:"changes_applied"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	ExecutedAt        time.Time `json:"executed_at"`
}

// Change describes one applied field update on a target document.
type Change struct {
	DocumentID string          `json:"document_id"`
	VersionID  string          `json:"version_id"`
	FieldPath  string          `json:"field_path"`
	OldValue   *snapshot.Value `json:"old_value,omitempty"`
	NewValue   snapshot.Value  `json:"new_value"`
}

// PreviewItem describes the update a cascade would make, without making it.
type PreviewItem struct {
	RuleID          string          `json:"rule_id"`
	RuleDescription string          `json:"rule_description,omitempty"`
	DocumentID      string          `json:"document_id"`
	Title           string          `json:"title"`
	FieldPath       string          `json:"field_path"`
	OldValue        *snapshot.Value `json:"old_value,omitempty"`
	NewValue        snapshot.Value  `json:"new_value"`
}

// LogQuery filters coordination log listings.
type LogQuery struct {
	RuleID       string
	TriggerDocID string
	Limit        int
}
