package audit

import "time"

// Common actions recorded by the engine.
const (
	ActionVersionRecorded  = "version_recorded"
	ActionSyncInitialized  = "sync_initialized"
	ActionConflictDetected = "conflict_detected"
	ActionConflictResolved = "conflict_resolved"
	ActionRuleCreated      = "coordination_rule_created"
	ActionRuleDeactivated  = "coordination_rule_deactivated"
	ActionRuleExecuted     = "coordination_execute"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         int64          `json:"id"`
	CompanyID  string         `json:"company_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	UserID     *string        `json:"user_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListOptions filters audit listings.
type ListOptions struct {
	Action     string
	EntityType string
	EntityID   string
	Limit      int
}
