package sync

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

// Service derives per-document sync status, detects divergent concurrent
// edits as conflicts, and exposes resolution operations.
type Service struct {
	states    StateRepository
	conflicts ConflictRepository
	versions  VersionStore
	auditor   AuditRecorder
	logger    *slog.Logger
}

// NewService creates a new sync tracker service.
func NewService(states StateRepository, conflicts ConflictRepository, versions VersionStore, auditor AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{states: states, conflicts: conflicts, versions: versions, auditor: auditor, logger: logger}
}

// InitializeRequest binds a document to a cloud provider file.
type InitializeRequest struct {
	DocumentID  string
	Provider    Provider
	CloudFileID string
	UserID      *string
}

// Initialize creates the sync state for a document in status idle.
func (s *Service) Initialize(ctx context.Context, companyID string, req InitializeRequest) (*State, error) {
	if req.DocumentID == "" || req.CloudFileID == "" || !req.Provider.Valid() {
		return nil, ErrInvalidInput
	}
	if _, err := s.states.GetByDocument(ctx, companyID, req.DocumentID); err == nil {
		return nil, ErrAlreadyInitialized
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking sync state: %w", err)
	}

	now := time.Now()
	st := &State{
		ID:          uuid.NewString(),
		DocumentID:  req.DocumentID,
		CompanyID:   companyID,
		Provider:    req.Provider,
		CloudFileID: req.CloudFileID,
		Status:      StatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.states.Create(ctx, companyID, st); err != nil {
		return nil, fmt.Errorf("creating sync state: %w", err)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionSyncInitialized,
			EntityType: "document_sync_state",
			EntityID:   req.DocumentID,
			UserID:     req.UserID,
			Details:    map[string]any{"provider": string(req.Provider), "cloud_file_id": req.CloudFileID},
		})
	}
	return st, nil
}

// SetStatus records an integration-reported transition. Only syncing,
// synced, and error may be set directly: conflict is entered by divergence
// detection and left only through Resolve.
func (s *Service) SetStatus(ctx context.Context, companyID, documentID string, status Status) (*State, error) {
	switch status {
	case StatusSyncing, StatusSynced, StatusError:
	default:
		return nil, ErrInvalidInput
	}
	st, err := s.loadState(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if st.Status == StatusConflict {
		return nil, ErrConflictPending
	}
	now := time.Now()
	st.Status = status
	st.UpdatedAt = now
	if status == StatusSynced {
		st.LastSyncAt = &now
	}
	if err := s.states.Update(ctx, companyID, st); err != nil {
		return nil, fmt.Errorf("updating sync state: %w", err)
	}
	return st, nil
}

// GetState returns a document's sync state, or ErrSyncNotConfigured.
func (s *Service) GetState(ctx context.Context, companyID, documentID string) (*State, error) {
	return s.loadState(ctx, companyID, documentID)
}

// EditRequest describes one edit arriving from any editing surface.
type EditRequest struct {
	DocumentID string
	Source     version.Source
	Snapshot   snapshot.Value
	EditedBy   *string
}

// RecordEdit is the engine's write path: it appends a version and then
// reclassifies the document's sync status. A divergent pending edit from
// the other side raises a Conflict; the returned conflict is nil otherwise.
func (s *Service) RecordEdit(ctx context.Context, companyID string, req EditRequest) (*version.Version, *Conflict, error) {
	v, err := s.versions.Append(ctx, companyID, version.AppendRequest{
		DocumentID: req.DocumentID,
		Source:     req.Source,
		Snapshot:   req.Snapshot,
		CreatedBy:  req.EditedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	st, err := s.states.GetByDocument(ctx, companyID, req.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No external sync configured: nothing to reclassify.
			return v, nil, nil
		}
		return nil, nil, fmt.Errorf("loading sync state: %w", err)
	}

	now := time.Now()
	external := req.Source.External()
	divergent := false
	if external {
		st.LastCloudEditAt = &now
		divergent = editedSince(st.LastLocalEditAt, st.LastSyncAt)
	} else {
		st.LastLocalEditAt = &now
		divergent = editedSince(st.LastCloudEditAt, st.LastSyncAt)
	}

	if st.Status == StatusConflict {
		// Further edits fold into the open conflict; resolution will pick
		// up whatever is latest on each side.
		st.UpdatedAt = now
		if err := s.states.Update(ctx, companyID, st); err != nil {
			return nil, nil, fmt.Errorf("updating sync state: %w", err)
		}
		existing, err := s.conflicts.PendingByDocument(ctx, companyID, req.DocumentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("loading pending conflict: %w", err)
		}
		return v, existing, nil
	}

	if divergent {
		conflict, err := s.raiseConflict(ctx, companyID, st, v, external, now)
		if err != nil {
			return nil, nil, err
		}
		return v, conflict, nil
	}

	if external {
		// The stored latest now equals the cloud content.
		st.Status = StatusSynced
		st.LastSyncAt = &now
	}
	st.UpdatedAt = now
	if err := s.states.Update(ctx, companyID, st); err != nil {
		return nil, nil, fmt.Errorf("updating sync state: %w", err)
	}
	return v, nil, nil
}

func (s *Service) raiseConflict(ctx context.Context, companyID string, st *State, v *version.Version, incomingExternal bool, now time.Time) (*Conflict, error) {
	competing, err := s.competingVersion(ctx, companyID, v, incomingExternal)
	if err != nil {
		return nil, err
	}

	conflict := &Conflict{
		ID:         uuid.NewString(),
		DocumentID: v.DocumentID,
		CompanyID:  companyID,
		DetectedAt: now,
	}
	if incomingExternal {
		conflict.CloudVersionID = v.ID
		conflict.LocalVersionID = competing
	} else {
		conflict.LocalVersionID = v.ID
		conflict.CloudVersionID = competing
	}
	if err := s.conflicts.Create(ctx, companyID, conflict); err != nil {
		return nil, fmt.Errorf("creating conflict: %w", err)
	}

	st.Status = StatusConflict
	st.UpdatedAt = now
	if err := s.states.Update(ctx, companyID, st); err != nil {
		return nil, fmt.Errorf("updating sync state: %w", err)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionConflictDetected,
			EntityType: "sync_conflict",
			EntityID:   conflict.ID,
			Details:    map[string]any{"document_id": v.DocumentID},
		})
	}
	s.logger.Info("sync conflict detected", "document_id", v.DocumentID, "conflict_id", conflict.ID)
	return conflict, nil
}

// competingVersion finds the most recent version authored on the opposite
// side of the incoming edit.
func (s *Service) competingVersion(ctx context.Context, companyID string, v *version.Version, incomingExternal bool) (string, error) {
	history, err := s.versions.History(ctx, companyID, v.DocumentID, version.DefaultHistoryLimit)
	if err != nil {
		return "", fmt.Errorf("loading history: %w", err)
	}
	for _, prev := range history {
		if prev.ID == v.ID {
			continue
		}
		if prev.Source.External() != incomingExternal {
			return prev.ID, nil
		}
	}
	// No opposite-side version in the window; fall back to the predecessor.
	for _, prev := range history {
		if prev.ID != v.ID {
			return prev.ID, nil
		}
	}
	return v.ID, nil
}

// ResolveRequest settles a conflict.
type ResolveRequest struct {
	ConflictID string
	Resolution Resolution
	Merged     *snapshot.Value
	ResolvedBy *string
}

// Resolve settles a conflict by appending exactly one new version carrying
// the chosen snapshot, marking the conflict resolved, and returning the
// document to synced. Prior versions are never deleted. Resolving a missing
// or already-resolved conflict fails with ErrConflictNotFound.
func (s *Service) Resolve(ctx context.Context, companyID string, req ResolveRequest) (*version.Version, error) {
	if !req.Resolution.Valid() {
		return nil, ErrInvalidResolution
	}
	conflict, err := s.conflicts.Get(ctx, companyID, req.ConflictID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConflictNotFound
		}
		return nil, fmt.Errorf("loading conflict: %w", err)
	}
	if conflict.Resolved() {
		return nil, ErrConflictNotFound
	}

	var chosen snapshot.Value
	switch req.Resolution {
	case ResolutionKeepMP:
		v, err := s.versions.Get(ctx, companyID, conflict.LocalVersionID)
		if err != nil {
			return nil, err
		}
		chosen = v.Snapshot
	case ResolutionKeepCloud:
		v, err := s.versions.Get(ctx, companyID, conflict.CloudVersionID)
		if err != nil {
			return nil, err
		}
		chosen = v.Snapshot
	case ResolutionMerge:
		if req.Merged == nil {
			return nil, ErrMergedSnapshotRequired
		}
		chosen = *req.Merged
	}

	resolved, err := s.versions.Append(ctx, companyID, version.AppendRequest{
		DocumentID: conflict.DocumentID,
		Source:     version.SourceEditor,
		Snapshot:   chosen,
		CreatedBy:  req.ResolvedBy,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := req.Resolution
	conflict.Resolution = &res
	conflict.ResolvedBy = req.ResolvedBy
	conflict.ResolvedAt = &now
	if err := s.conflicts.MarkResolved(ctx, companyID, conflict); err != nil {
		return nil, fmt.Errorf("marking conflict resolved: %w", err)
	}

	st, err := s.states.GetByDocument(ctx, companyID, conflict.DocumentID)
	if err == nil {
		st.Status = StatusSynced
		st.LastSyncAt = &now
		st.UpdatedAt = now
		if err := s.states.Update(ctx, companyID, st); err != nil {
			return nil, fmt.Errorf("updating sync state: %w", err)
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading sync state: %w", err)
	}

	if s.auditor != nil {
		s.auditor.Record(ctx, companyID, audit.Entry{
			Action:     audit.ActionConflictResolved,
			EntityType: "sync_conflict",
			EntityID:   conflict.ID,
			UserID:     req.ResolvedBy,
			Details: map[string]any{
				"document_id": conflict.DocumentID,
				"resolution":  string(req.Resolution),
			},
		})
	}
	return resolved, nil
}

// GetConflict returns a document's pending conflict, or nil if none.
func (s *Service) GetConflict(ctx context.Context, companyID, documentID string) (*Conflict, error) {
	conflict, err := s.conflicts.PendingByDocument(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading pending conflict: %w", err)
	}
	return conflict, nil
}

// ArtifactStatuses projects every document's latest version, sync status,
// last editor, and word count for presentation.
func (s *Service) ArtifactStatuses(ctx context.Context, companyID string) ([]ArtifactStatus, error) {
	docs, err := s.versions.ListDocuments(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	latest, err := s.versions.LatestAll(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading latest versions: %w", err)
	}
	states, err := s.states.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing sync states: %w", err)
	}

	latestByDoc := make(map[string]*version.Version, len(latest))
	for i := range latest {
		latestByDoc[latest[i].DocumentID] = &latest[i]
	}
	stateByDoc := make(map[string]*State, len(states))
	for i := range states {
		stateByDoc[states[i].DocumentID] = &states[i]
	}

	statuses := make([]ArtifactStatus, 0, len(docs))
	for _, doc := range docs {
		status := ArtifactStatus{
			DocumentID: doc.ID,
			Title:      doc.Title,
			DocType:    doc.DocType,
			SyncStatus: StatusIdle,
		}
		if st, ok := stateByDoc[doc.ID]; ok {
			status.SyncStatus = st.Status
			provider := st.Provider
			status.Provider = &provider
		}
		if v, ok := latestByDoc[doc.ID]; ok {
			status.LastEditedBy = v.CreatedBy
			editedAt := v.CreatedAt
			status.LastEditedAt = &editedAt
			source := v.Source
			status.EditSource = &source
			status.WordCount = v.Snapshot.WordCount()
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *Service) loadState(ctx context.Context, companyID, documentID string) (*State, error) {
	st, err := s.states.GetByDocument(ctx, companyID, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSyncNotConfigured
		}
		return nil, fmt.Errorf("loading sync state: %w", err)
	}
	return st, nil
}

func editedSince(editAt, syncAt *time.Time) bool {
	if editAt == nil {
		return false
	}
	return syncAt == nil || editAt.After(*syncAt)
}
