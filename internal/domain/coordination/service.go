package coordination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/repository"
	"github.com/propside/syncd/internal/snapshot"
)

// DefaultMaxCascadeTargets bounds how many documents one execution may touch.
const DefaultMaxCascadeTargets = 50

// Service manages coordination rules and runs cascades. A cascade is not
// atomic across documents: each target update is its own append, and a
// failure partway leaves earlier updates in place.
type Service struct {
	rules      RuleRepository
	log        LogRepository
	versions   VersionStore
	auditor    AuditRecorder
	logger     *slog.Logger
	maxTargets int
}

// NewService creates a new rule engine service. maxTargets <= 0 falls back
// to DefaultMaxCascadeTargets.
func NewService(rules RuleRepository, log LogRepository, versions VersionStore, auditor AuditRecorder, logger *slog.Logger, maxTargets int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTargets <= 0 {
		maxTargets = DefaultMaxCascadeTargets
	}
	return &Service{rules: rules, log: log, versions: versions, auditor: auditor, logger: logger, maxTargets: maxTargets}
}

// CreateRule validates and stores a new active rule.
func (s *Service) CreateRule(ctx context.Context, companyID string, req CreateRuleRequest) (*Rule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rule := &Rule{
		ID:            uuid.NewString(),
		CompanyID:     companyID,
		Description:   req.Description,
		SourceDocType: req.SourceDocType,
		SourceField:   req.SourceField,
		TargetDocType: req.TargetDocType,
		TargetField:   req.TargetField,
		Transform:     req.Transform,
		Active:        true,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     time.Now(),
	}
	if err := s.rules.Create(ctx, companyID, rule); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionRuleCreated,
			EntityType: "coordination_rule",
			EntityID:   rule.ID,
			UserID:     req.CreatedBy,
			Details:    map[string]any{"description": rule.Description, "transform": string(rule.Transform)},
		})
	}
	return rule, nil
}

// GetRule returns one rule by ID.
func (s *Service) GetRule(ctx context.Context, companyID, id string) (*Rule, error) {
	rule, err := s.rules.Get(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("loading rule: %w", err)
	}
	return rule, nil
}

// DeactivateRule turns a rule off. Deactivated rules keep their log history
// and are never deleted.
func (s *Service) DeactivateRule(ctx context.Context, companyID, id string, userID *string) error {
	if _, err := s.GetRule(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.rules.SetActive(ctx, companyID, id, false); err != nil {
		return fmt.Errorf("deactivating rule: %w", err)
	}
	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionRuleDeactivated,
			EntityType: "coordination_rule",
			EntityID:   id,
			UserID:     userID,
		})
	}
	return nil
}

// ListRules returns the company's rules, newest first.
func (s *Service) ListRules(ctx context.Context, companyID string, activeOnly bool) ([]Rule, error) {
	return s.rules.List(ctx, companyID, activeOnly)
}

// Execute runs one rule against the current state of the company's
// documents. It reads the rule's source field from the trigger document's
// latest version, applies the transform, and appends a new version to every
// target document. Exactly one log entry records the attempt, whatever the
// outcome: applied with the full change list, skipped when the rule did not
// apply, or failed with the changes that landed before the failure.
//
// A failure partway through returns *PartialCascadeError carrying the
// updates that already happened.
func (s *Service) Execute(ctx context.Context, companyID, ruleID, triggerDocID string, userID *string) ([]Change, error) {
	rule, err := s.GetRule(ctx, companyID, ruleID)
	if err != nil {
		return nil, err
	}
	if !rule.Active {
		return nil, ErrRuleNotFound
	}

	entry := &LogEntry{
		RuleID:            rule.ID,
		TriggerDocID:      triggerDocID,
		AffectedDocuments: []string{},
		ChangesApplied:    []Change{},
	}

	trigger, err := s.versions.Latest(ctx, companyID, triggerDocID)
	if err != nil {
		entry.Status = LogFailed
		entry.ErrorMessage = err.Error()
		s.appendLog(ctx, companyID, entry)
		return nil, err
	}
	entry.TriggerVersionID = trigger.ID

	sourceVal, ok := snapshot.Get(trigger.Snapshot, rule.SourceField)
	if !ok {
		entry.Status = LogSkipped
		entry.ErrorMessage = fmt.Sprintf("source field %q absent", rule.SourceField)
		s.appendLog(ctx, companyID, entry)
		return nil, nil
	}

	newVal, err := applyTransform(rule.Transform, sourceVal)
	if err != nil {
		entry.Status = LogFailed
		entry.ErrorMessage = err.Error()
		s.appendLog(ctx, companyID, entry)
		return nil, err
	}

	targets, err := s.targetDocuments(ctx, companyID, rule, triggerDocID)
	if err != nil {
		entry.Status = LogFailed
		entry.ErrorMessage = err.Error()
		s.appendLog(ctx, companyID, entry)
		return nil, err
	}
	if len(targets) == 0 {
		entry.Status = LogSkipped
		entry.ErrorMessage = fmt.Sprintf("no target documents of type %q", rule.TargetDocType)
		s.appendLog(ctx, companyID, entry)
		return nil, nil
	}
	if len(targets) > s.maxTargets {
		err := fmt.Errorf("%w: %d targets, limit %d", ErrTooManyTargets, len(targets), s.maxTargets)
		entry.Status = LogFailed
		entry.ErrorMessage = err.Error()
		s.appendLog(ctx, companyID, entry)
		return nil, err
	}

	var applied []Change
	for _, target := range targets {
		change, err := s.applyToTarget(ctx, companyID, rule, trigger, target, newVal, userID)
		if err != nil {
			entry.Status = LogFailed
			entry.ErrorMessage = err.Error()
			s.appendLog(ctx, companyID, entry)
			return applied, &PartialCascadeError{RuleID: rule.ID, Applied: applied, Err: err}
		}
		applied = append(applied, *change)
		entry.AffectedDocuments = append(entry.AffectedDocuments, target.doc.ID)
		entry.ChangesApplied = append(entry.ChangesApplied, *change)
	}
	entry.Status = LogApplied
	s.appendLog(ctx, companyID, entry)

	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionRuleExecuted,
			EntityType: "coordination_rule",
			EntityID:   rule.ID,
			UserID:     userID,
			Details: map[string]any{
				"trigger_doc_id": triggerDocID,
				"targets":        len(applied),
			},
		})
	}
	return applied, nil
}

func (s *Service) applyToTarget(ctx context.Context, companyID string, rule *Rule, trigger *version.Version, target cascadeTarget, newVal snapshot.Value, userID *string) (*Change, error) {
	var base snapshot.Value
	var oldValue *snapshot.Value
	if target.latest != nil {
		base = target.latest.Snapshot
		if old, ok := snapshot.Get(base, rule.TargetField); ok {
			oldValue = &old
		}
	} else {
		base = snapshot.Object()
	}

	updated, err := snapshot.Set(base, rule.TargetField, newVal)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", rule.TargetField, err)
	}
	v, err := s.versions.Append(ctx, companyID, version.AppendRequest{
		DocumentID: target.doc.ID,
		Source:     version.SourceEditor,
		Snapshot:   updated,
		CreatedBy:  userID,
	})
	if err != nil {
		return nil, err
	}
	return &Change{
		DocumentID: target.doc.ID,
		VersionID:  v.ID,
		FieldPath:  rule.TargetField,
		OldValue:   oldValue,
		NewValue:   newVal,
	}, nil
}

// Preview computes what Execute would change if the rule's source field
// held value, without writing anything: no versions, no log entries, no
// audit records. The value is hypothetical and need not match any stored
// document state.
func (s *Service) Preview(ctx context.Context, companyID, ruleID string, value snapshot.Value) ([]PreviewItem, error) {
	rule, err := s.GetRule(ctx, companyID, ruleID)
	if err != nil {
		return nil, err
	}
	if !rule.Active {
		return nil, ErrRuleNotFound
	}
	newVal, err := applyTransform(rule.Transform, value)
	if err != nil {
		return nil, err
	}
	targets, err := s.targetDocuments(ctx, companyID, rule, "")
	if err != nil {
		return nil, err
	}

	items := make([]PreviewItem, 0, len(targets))
	for _, target := range targets {
		item := PreviewItem{
			RuleID:          rule.ID,
			RuleDescription: rule.Description,
			DocumentID:      target.doc.ID,
			Title:           target.doc.Title,
			FieldPath:       rule.TargetField,
			NewValue:        newVal,
		}
		if target.latest != nil {
			if old, ok := snapshot.Get(target.latest.Snapshot, rule.TargetField); ok {
				item.OldValue = &old
			}
		}
		items = append(items, item)
	}
	return items, nil
}

type cascadeTarget struct {
	doc    version.Document
	latest *version.Version
}

// targetDocuments finds every document of the rule's target type, excluding
// the trigger when one is given. The type is read from the latest snapshot's
// doc_type field when present, falling back to the document record.
func (s *Service) targetDocuments(ctx context.Context, companyID string, rule *Rule, triggerDocID string) ([]cascadeTarget, error) {
	docs, err := s.versions.ListDocuments(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	latest, err := s.versions.LatestAll(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading latest versions: %w", err)
	}
	latestByDoc := make(map[string]*version.Version, len(latest))
	for i := range latest {
		latestByDoc[latest[i].DocumentID] = &latest[i]
	}

	var targets []cascadeTarget
	for _, doc := range docs {
		if triggerDocID != "" && doc.ID == triggerDocID {
			continue
		}
		v := latestByDoc[doc.ID]
		docType := doc.DocType
		if v != nil {
			if field, ok := snapshot.Get(v.Snapshot, version.DocTypeField); ok && field.Kind() == snapshot.KindString {
				docType = field.StringVal()
			}
		}
		if docType != rule.TargetDocType {
			continue
		}
		targets = append(targets, cascadeTarget{doc: doc, latest: v})
	}
	return targets, nil
}

// Logs returns coordination log entries matching q, newest first.
func (s *Service) Logs(ctx context.Context, companyID string, q LogQuery) ([]LogEntry, error) {
	return s.log.List(ctx, companyID, q)
}

func (s *Service) appendLog(ctx context.Context, companyID string, entry *LogEntry) {
	entry.CompanyID = companyID
	entry.ExecutedAt = time.Now()
	if err := s.log.Append(ctx, companyID, entry); err != nil {
		s.logger.Warn("coordination log append failed", "rule_id", entry.RuleID, "error", err)
	}
}
