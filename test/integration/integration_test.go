package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/coordination"
	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/snapshot"
	"github.com/propside/syncd/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db *sqlite.DB

	auditSvc        *audit.Service
	versionSvc      *version.Service
	syncSvc         *syncdom.Service
	coordinationSvc *coordination.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	auditSvc := audit.NewService(sqlite.NewAuditRepository(db), nil)
	versionSvc := version.NewService(sqlite.NewDocumentRepository(db), sqlite.NewVersionRepository(db), auditSvc, nil)
	syncSvc := syncdom.NewService(sqlite.NewSyncStateRepository(db), sqlite.NewConflictRepository(db), versionSvc, auditSvc, nil)
	coordinationSvc := coordination.NewService(sqlite.NewRuleRepository(db), sqlite.NewCoordinationLogRepository(db), versionSvc, auditSvc, nil, 0)

	return &testEnv{
		db:              db,
		auditSvc:        auditSvc,
		versionSvc:      versionSvc,
		syncSvc:         syncSvc,
		coordinationSvc: coordinationSvc,
	}
}

func (env *testEnv) createDocument(t *testing.T, ctx context.Context, companyID, docType, title string) *version.Document {
	t.Helper()
	doc, err := env.versionSvc.CreateDocument(ctx, companyID, version.CreateDocumentRequest{
		DocType: docType,
		Title:   title,
	})
	require.NoError(t, err)
	return doc
}

func TestIntegration_VersionLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	companyID := "company1"

	doc := env.createDocument(t, ctx, companyID, "proposal", "Q3 Proposal")

	v1, err := env.versionSvc.Append(ctx, companyID, version.AppendRequest{
		DocumentID: doc.ID,
		Source:     version.SourceEditor,
		Snapshot: snapshot.Object(
			snapshot.F("title", snapshot.String("Q3 Proposal")),
			snapshot.F("budget", snapshot.Number(100000)),
		),
	})
	require.NoError(t, err)
	require.Equal(t, 1, v1.Number)
	require.Nil(t, v1.Diff)

	v2, err := env.versionSvc.Append(ctx, companyID, version.AppendRequest{
		DocumentID: doc.ID,
		Source:     version.SourceEditor,
		Snapshot: snapshot.Object(
			snapshot.F("title", snapshot.String("Q3 Proposal")),
			snapshot.F("budget", snapshot.Number(120000)),
			snapshot.F("owner", snapshot.String("dana")),
		),
	})
	require.NoError(t, err)
	require.Equal(t, 2, v2.Number)
	require.NotNil(t, v2.Diff)
	require.Equal(t, 1, v2.Diff.Additions)
	require.Equal(t, 1, v2.Diff.Modifications)

	result, err := env.versionSvc.DiffVersions(ctx, companyID, v1.ID, v2.ID)
	require.NoError(t, err)
	require.Len(t, result.Additions, 1)
	require.Len(t, result.Modifications, 1)
	require.Equal(t, "owner", result.Additions[0].Path)
	require.Equal(t, "budget", result.Modifications[0].Path)

	history, err := env.versionSvc.History(ctx, companyID, doc.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 2, history[0].Number)

	// tenants never see each other's documents
	_, err = env.versionSvc.Latest(ctx, "other-company", doc.ID)
	require.ErrorIs(t, err, version.ErrDocumentNotFound)
}

func TestIntegration_ConflictLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	companyID := "company1"
	userID := "dana"

	doc := env.createDocument(t, ctx, companyID, "proposal", "Synced Proposal")

	_, err := env.syncSvc.Initialize(ctx, companyID, syncdom.InitializeRequest{
		DocumentID:  doc.ID,
		Provider:    syncdom.ProviderOneDrive,
		CloudFileID: "cloud-file-1",
		UserID:      &userID,
	})
	require.NoError(t, err)

	// cloud edit arrives first and becomes the sync point
	_, conflict, err := env.syncSvc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: doc.ID,
		Source:     version.SourceWordOnline,
		Snapshot:   snapshot.Object(snapshot.F("body", snapshot.String("cloud draft"))),
	})
	require.NoError(t, err)
	require.Nil(t, conflict)

	state, err := env.syncSvc.GetState(ctx, companyID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, syncdom.StatusSynced, state.Status)
	require.NotNil(t, state.LastSyncAt)

	// both sides edit after the sync point
	time.Sleep(5 * time.Millisecond)
	_, conflict, err = env.syncSvc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: doc.ID,
		Source:     version.SourceEditor,
		Snapshot:   snapshot.Object(snapshot.F("body", snapshot.String("local revision"))),
		EditedBy:   &userID,
	})
	require.NoError(t, err)
	require.Nil(t, conflict)

	time.Sleep(5 * time.Millisecond)
	_, conflict, err = env.syncSvc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: doc.ID,
		Source:     version.SourceWordOnline,
		Snapshot:   snapshot.Object(snapshot.F("body", snapshot.String("cloud revision"))),
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	require.False(t, conflict.Resolved())

	state, err = env.syncSvc.GetState(ctx, companyID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, syncdom.StatusConflict, state.Status)

	// both competing versions stay readable
	local, err := env.versionSvc.Get(ctx, companyID, conflict.LocalVersionID)
	require.NoError(t, err)
	cloud, err := env.versionSvc.Get(ctx, companyID, conflict.CloudVersionID)
	require.NoError(t, err)
	require.False(t, snapshot.Equal(local.Snapshot, cloud.Snapshot))

	// status transitions are blocked until the conflict is settled
	_, err = env.syncSvc.SetStatus(ctx, companyID, doc.ID, syncdom.StatusSyncing)
	require.ErrorIs(t, err, syncdom.ErrConflictPending)

	resolved, err := env.syncSvc.Resolve(ctx, companyID, syncdom.ResolveRequest{
		ConflictID: conflict.ID,
		Resolution: syncdom.ResolutionKeepCloud,
		ResolvedBy: &userID,
	})
	require.NoError(t, err)
	require.True(t, snapshot.Equal(cloud.Snapshot, resolved.Snapshot))
	require.Equal(t, version.SourceEditor, resolved.Source)

	state, err = env.syncSvc.GetState(ctx, companyID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, syncdom.StatusSynced, state.Status)

	pending, err := env.syncSvc.GetConflict(ctx, companyID, doc.ID)
	require.NoError(t, err)
	require.Nil(t, pending)

	entries, err := env.auditSvc.Recent(ctx, companyID, audit.ListOptions{Action: audit.ActionConflictResolved})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestIntegration_CoordinationCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	companyID := "company1"
	userID := "dana"

	contract := env.createDocument(t, ctx, companyID, "contract", "Master Contract")
	cost := env.createDocument(t, ctx, companyID, "cost_summary", "Cost Summary")

	_, err := env.versionSvc.Append(ctx, companyID, version.AppendRequest{
		DocumentID: contract.ID,
		Source:     version.SourceEditor,
		Snapshot: snapshot.Object(
			snapshot.F("doc_type", snapshot.String("contract")),
			snapshot.F("value", snapshot.Number(500000)),
		),
	})
	require.NoError(t, err)

	_, err = env.versionSvc.Append(ctx, companyID, version.AppendRequest{
		DocumentID: cost.ID,
		Source:     version.SourceEditor,
		Snapshot: snapshot.Object(
			snapshot.F("doc_type", snapshot.String("cost_summary")),
			snapshot.F("summary", snapshot.Object(
				snapshot.F("total", snapshot.String("$0")),
				snapshot.F("notes", snapshot.String("keep me")),
			)),
		),
	})
	require.NoError(t, err)

	rule, err := env.coordinationSvc.CreateRule(ctx, companyID, coordination.CreateRuleRequest{
		Description:   "contract value to cost summary",
		SourceDocType: "contract",
		SourceField:   "value",
		TargetDocType: "cost_summary",
		TargetField:   "summary.total",
		Transform:     coordination.TransformFormat,
		CreatedBy:     &userID,
	})
	require.NoError(t, err)

	// Preview simulates a value that has not been written anywhere.
	preview, err := env.coordinationSvc.Preview(ctx, companyID, rule.ID, snapshot.Number(750000))
	require.NoError(t, err)
	require.Len(t, preview, 1)
	require.Equal(t, "$750,000", preview[0].NewValue.StringVal())
	require.Equal(t, "contract value to cost summary", preview[0].RuleDescription)

	// Nothing changed: the preview never touched the store.
	unchanged, err := env.versionSvc.Latest(ctx, companyID, cost.ID)
	require.NoError(t, err)
	require.Equal(t, 1, unchanged.Number)

	changes, err := env.coordinationSvc.Execute(ctx, companyID, rule.ID, contract.ID, &userID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, cost.ID, changes[0].DocumentID)

	latest, err := env.versionSvc.Latest(ctx, companyID, cost.ID)
	require.NoError(t, err)
	total, ok := snapshot.Get(latest.Snapshot, "summary.total")
	require.True(t, ok)
	require.Equal(t, "$500,000", total.StringVal())
	notes, ok := snapshot.Get(latest.Snapshot, "summary.notes")
	require.True(t, ok)
	require.Equal(t, "keep me", notes.StringVal())
	require.Equal(t, 2, latest.Number)

	logs, err := env.coordinationSvc.Logs(ctx, companyID, coordination.LogQuery{RuleID: rule.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, coordination.LogApplied, logs[0].Status)
	require.Equal(t, []string{cost.ID}, logs[0].AffectedDocuments)
	require.Len(t, logs[0].ChangesApplied, 1)
	require.Equal(t, "summary.total", logs[0].ChangesApplied[0].FieldPath)

	// deactivated rules stop cascading
	require.NoError(t, env.coordinationSvc.DeactivateRule(ctx, companyID, rule.ID, &userID))
	_, err = env.coordinationSvc.Execute(ctx, companyID, rule.ID, contract.ID, &userID)
	require.ErrorIs(t, err, coordination.ErrRuleNotFound)
}

func TestIntegration_ArtifactStatuses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	companyID := "company1"

	doc := env.createDocument(t, ctx, companyID, "proposal", "Tracked")
	plain := env.createDocument(t, ctx, companyID, "contract", "Untracked")

	_, err := env.versionSvc.Append(ctx, companyID, version.AppendRequest{
		DocumentID: doc.ID,
		Source:     version.SourceEditor,
		Snapshot:   snapshot.Object(snapshot.F("body", snapshot.String("one two three"))),
	})
	require.NoError(t, err)

	_, err = env.syncSvc.Initialize(ctx, companyID, syncdom.InitializeRequest{
		DocumentID:  doc.ID,
		Provider:    syncdom.ProviderGoogleDrive,
		CloudFileID: "gd-1",
	})
	require.NoError(t, err)

	statuses, err := env.syncSvc.ArtifactStatuses(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byID := map[string]syncdom.ArtifactStatus{}
	for _, st := range statuses {
		byID[st.DocumentID] = st
	}
	require.Equal(t, syncdom.StatusIdle, byID[doc.ID].SyncStatus)
	require.Equal(t, 3, byID[doc.ID].WordCount)
	require.Equal(t, syncdom.Status(""), byID[plain.ID].SyncStatus)
	require.Zero(t, byID[plain.ID].WordCount)
}
