package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/coordination"
	"github.com/propside/syncd/internal/domain/diff"
	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/snapshot"
)

// VersionService defines version store operations needed by the API.
type VersionService interface {
	CreateDocument(ctx context.Context, companyID string, req version.CreateDocumentRequest) (*version.Document, error)
	GetDocument(ctx context.Context, companyID, id string) (*version.Document, error)
	ListDocuments(ctx context.Context, companyID string) ([]version.Document, error)
	Append(ctx context.Context, companyID string, req version.AppendRequest) (*version.Version, error)
	Latest(ctx context.Context, companyID, documentID string) (*version.Version, error)
	Get(ctx context.Context, companyID, id string) (*version.Version, error)
	History(ctx context.Context, companyID, documentID string, limit int) ([]version.Version, error)
	DiffVersions(ctx context.Context, companyID, oldID, newID string) (diff.Result, error)
}

// SyncService defines sync tracker operations needed by the API.
type SyncService interface {
	Initialize(ctx context.Context, companyID string, req syncdom.InitializeRequest) (*syncdom.State, error)
	SetStatus(ctx context.Context, companyID, documentID string, status syncdom.Status) (*syncdom.State, error)
	GetState(ctx context.Context, companyID, documentID string) (*syncdom.State, error)
	RecordEdit(ctx context.Context, companyID string, req syncdom.EditRequest) (*version.Version, *syncdom.Conflict, error)
	Resolve(ctx context.Context, companyID string, req syncdom.ResolveRequest) (*version.Version, error)
	GetConflict(ctx context.Context, companyID, documentID string) (*syncdom.Conflict, error)
	ArtifactStatuses(ctx context.Context, companyID string) ([]syncdom.ArtifactStatus, error)
}

// CoordinationService defines rule engine operations needed by the API.
type CoordinationService interface {
	CreateRule(ctx context.Context, companyID string, req coordination.CreateRuleRequest) (*coordination.Rule, error)
	ListRules(ctx context.Context, companyID string, activeOnly bool) ([]coordination.Rule, error)
	DeactivateRule(ctx context.Context, companyID, id string, userID *string) error
	Execute(ctx context.Context, companyID, ruleID, triggerDocID string, userID *string) ([]coordination.Change, error)
	Preview(ctx context.Context, companyID, ruleID string, value snapshot.Value) ([]coordination.PreviewItem, error)
	Logs(ctx context.Context, companyID string, q coordination.LogQuery) ([]coordination.LogEntry, error)
}

// AuditService defines audit log reads needed by the API.
type AuditService interface {
	Recent(ctx context.Context, companyID string, opts audit.ListOptions) ([]audit.Entry, error)
}

// Handler dispatches API commands.
type Handler struct {
	versions     VersionService
	syncs        SyncService
	coordination CoordinationService
	audits       AuditService
}

// NewHandler creates a new handler.
func NewHandler(versions VersionService, syncs SyncService, coordinationSvc CoordinationService, audits AuditService) *Handler {
	return &Handler{
		versions:     versions,
		syncs:        syncs,
		coordination: coordinationSvc,
		audits:       audits,
	}
}

// Handle dispatches requests to domain services.
func (h *Handler) Handle(ctx context.Context, companyID string, userID *string, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_document":
		var req CreateDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.versions.CreateDocument(ctx, companyID, version.CreateDocumentRequest{
			ID:      req.ID,
			DocType: req.DocType,
			Title:   req.Title,
		}))
	case "list_documents":
		return wrap(h.versions.ListDocuments(ctx, companyID))
	case "append_version":
		var req AppendVersionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		snap, err := parseSnapshot(req.Snapshot)
		if err != nil {
			return nil, err
		}
		return wrap(h.versions.Append(ctx, companyID, version.AppendRequest{
			DocumentID: req.DocumentID,
			Source:     version.Source(req.Source),
			Snapshot:   snap,
			CreatedBy:  userID,
		}))
	case "record_edit":
		var req RecordEditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		snap, err := parseSnapshot(req.Snapshot)
		if err != nil {
			return nil, err
		}
		v, conflict, err := h.syncs.RecordEdit(ctx, companyID, syncdom.EditRequest{
			DocumentID: req.DocumentID,
			Source:     version.Source(req.Source),
			Snapshot:   snap,
			EditedBy:   userID,
		})
		if err != nil {
			return nil, mapOrPass(err)
		}
		return map[string]any{
			"version":  v,
			"conflict": conflict,
		}, nil
	case "get_latest_version":
		var req GetLatestVersionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.versions.Latest(ctx, companyID, req.DocumentID))
	case "get_version_history":
		var req GetVersionHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.versions.History(ctx, companyID, req.DocumentID, req.Limit))
	case "diff_versions":
		var req DiffVersionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.versions.DiffVersions(ctx, companyID, req.OldVersionID, req.NewVersionID))
	case "get_artifact_statuses":
		return wrap(h.syncs.ArtifactStatuses(ctx, companyID))
	case "init_sync":
		var req InitSyncParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.syncs.Initialize(ctx, companyID, syncdom.InitializeRequest{
			DocumentID:  req.DocumentID,
			Provider:    syncdom.Provider(req.Provider),
			CloudFileID: req.CloudFileID,
			UserID:      userID,
		}))
	case "set_sync_status":
		var req SetSyncStatusParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.syncs.SetStatus(ctx, companyID, req.DocumentID, syncdom.Status(req.Status)))
	case "get_sync_state":
		var req GetSyncStateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.syncs.GetState(ctx, companyID, req.DocumentID))
	case "get_conflict":
		var req GetConflictParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		conflict, err := h.syncs.GetConflict(ctx, companyID, req.DocumentID)
		if err != nil {
			return nil, mapOrPass(err)
		}
		return map[string]any{"conflict": conflict}, nil
	case "merge_preview":
		var req MergePreviewParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.mergePreview(ctx, companyID, req.DocumentID)
	case "resolve_conflict":
		var req ResolveConflictParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		resolve := syncdom.ResolveRequest{
			ConflictID: req.ConflictID,
			Resolution: syncdom.Resolution(req.Resolution),
			ResolvedBy: userID,
		}
		if len(req.MergedSnapshot) > 0 {
			merged, err := parseSnapshot(req.MergedSnapshot)
			if err != nil {
				return nil, err
			}
			resolve.Merged = &merged
		}
		return wrap(h.syncs.Resolve(ctx, companyID, resolve))
	case "create_rule":
		var req CreateRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.coordination.CreateRule(ctx, companyID, coordination.CreateRuleRequest{
			Description:   req.Description,
			SourceDocType: req.SourceDocType,
			SourceField:   req.SourceField,
			TargetDocType: req.TargetDocType,
			TargetField:   req.TargetField,
			Transform:     coordination.Transform(req.Transform),
			CreatedBy:     userID,
		}))
	case "list_rules":
		var req ListRulesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.coordination.ListRules(ctx, companyID, req.ActiveOnly))
	case "deactivate_rule":
		var req DeactivateRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.coordination.DeactivateRule(ctx, companyID, req.RuleID, userID); err != nil {
			return nil, mapOrPass(err)
		}
		return map[string]any{"deactivated": req.RuleID}, nil
	case "execute_rule":
		var req ExecuteRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		changes, err := h.coordination.Execute(ctx, companyID, req.RuleID, req.TriggerDocID, userID)
		if err != nil {
			return nil, mapOrPass(err)
		}
		return map[string]any{"changes": changes}, nil
	case "preview_cascade":
		var req PreviewCascadeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if len(req.Value) == 0 {
			return nil, &APIError{Code: "VALIDATION_ERROR", Message: "value is required"}
		}
		value, err := snapshot.Parse(req.Value)
		if err != nil {
			return nil, &APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid value: %v", err)}
		}
		items, err := h.coordination.Preview(ctx, companyID, req.RuleID, value)
		if err != nil {
			return nil, mapOrPass(err)
		}
		return map[string]any{"items": items}, nil
	case "get_coordination_log":
		var req GetCoordinationLogParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.coordination.Logs(ctx, companyID, coordination.LogQuery{
			RuleID:       req.RuleID,
			TriggerDocID: req.TriggerDocID,
			Limit:        req.Limit,
		}))
	case "get_recent_audit":
		var req GetRecentAuditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.audits.Recent(ctx, companyID, audit.ListOptions{
			Action:     req.Action,
			EntityType: req.EntityType,
			Limit:      req.Limit,
		}))
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) mergePreview(ctx context.Context, companyID, documentID string) (any, error) {
	conflict, err := h.syncs.GetConflict(ctx, companyID, documentID)
	if err != nil {
		return nil, mapOrPass(err)
	}
	if conflict == nil {
		return nil, mapOrPass(syncdom.ErrConflictNotFound)
	}
	local, err := h.versions.Get(ctx, companyID, conflict.LocalVersionID)
	if err != nil {
		return nil, mapOrPass(err)
	}
	cloud, err := h.versions.Get(ctx, companyID, conflict.CloudVersionID)
	if err != nil {
		return nil, mapOrPass(err)
	}
	merged := syncdom.MergePreview(local.Snapshot, cloud.Snapshot)
	return map[string]any{"merged_snapshot": merged}, nil
}

// wrap funnels a (value, error) pair through error mapping.
func wrap[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, mapOrPass(err)
	}
	return v, nil
}

// mapOrPass converts known domain errors to APIErrors, leaving unknown
// errors (storage failures and the like) untouched.
func mapOrPass(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return &APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid parameters: %v", err)}
	}
	return nil
}

func parseSnapshot(raw json.RawMessage) (snapshot.Value, error) {
	if len(raw) == 0 {
		return snapshot.Value{}, &APIError{Code: "VALIDATION_ERROR", Message: "snapshot is required"}
	}
	v, err := snapshot.Parse(raw)
	if err != nil {
		return snapshot.Value{}, &APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("invalid snapshot: %v", err)}
	}
	return v, nil
}
