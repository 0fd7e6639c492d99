package sync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/repository"
	"github.com/propside/syncd/internal/repository/mocks"
	"github.com/propside/syncd/internal/snapshot"
)

func newTestService(states *mocks.SyncStateRepository, conflicts *mocks.ConflictRepository, versions *mocks.VersionStore) *syncdom.Service {
	return syncdom.NewService(states, conflicts, versions, nil, nil)
}

func TestSyncService_Initialize(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(nil, repository.ErrNotFound)
	states.On("Create", ctx, companyID, mock.Anything).Return(nil)

	svc := newTestService(states, &mocks.ConflictRepository{}, &mocks.VersionStore{})
	st, err := svc.Initialize(ctx, companyID, syncdom.InitializeRequest{
		DocumentID:  "doc1",
		Provider:    syncdom.ProviderOneDrive,
		CloudFileID: "file-abc",
	})
	require.NoError(t, err)
	require.Equal(t, syncdom.StatusIdle, st.Status)
	require.Equal(t, "file-abc", st.CloudFileID)
}

func TestSyncService_Initialize_Twice(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	states := &mocks.SyncStateRepository{}
	existing := &syncdom.State{ID: "s1", DocumentID: "doc1", Status: syncdom.StatusSynced}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(existing, nil)

	svc := newTestService(states, &mocks.ConflictRepository{}, &mocks.VersionStore{})
	_, err := svc.Initialize(ctx, companyID, syncdom.InitializeRequest{
		DocumentID:  "doc1",
		Provider:    syncdom.ProviderOneDrive,
		CloudFileID: "file-abc",
	})
	require.ErrorIs(t, err, syncdom.ErrAlreadyInitialized)
}

func TestSyncService_SetStatus_ConflictGuard(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	states := &mocks.SyncStateRepository{}
	st := &syncdom.State{ID: "s1", DocumentID: "doc1", Status: syncdom.StatusConflict}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(st, nil)

	svc := newTestService(states, &mocks.ConflictRepository{}, &mocks.VersionStore{})
	_, err := svc.SetStatus(ctx, companyID, "doc1", syncdom.StatusSynced)
	require.ErrorIs(t, err, syncdom.ErrConflictPending)
}

func TestSyncService_SetStatus_DirectConflictRejected(t *testing.T) {
	svc := newTestService(&mocks.SyncStateRepository{}, &mocks.ConflictRepository{}, &mocks.VersionStore{})
	_, err := svc.SetStatus(context.Background(), "co1", "doc1", syncdom.StatusConflict)
	require.ErrorIs(t, err, syncdom.ErrInvalidInput)
}

func TestSyncService_RecordEdit_NoSyncState(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	versions := &mocks.VersionStore{}
	appended := &version.Version{ID: "v1", DocumentID: "doc1", Number: 1, Source: version.SourceEditor}
	versions.On("Append", ctx, companyID, mock.Anything).Return(appended, nil)

	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(nil, repository.ErrNotFound)

	svc := newTestService(states, &mocks.ConflictRepository{}, versions)
	v, conflict, err := svc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: "doc1",
		Source:     version.SourceEditor,
		Snapshot:   snapshot.Object(),
	})
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Equal(t, "v1", v.ID)
}

func TestSyncService_RecordEdit_ExternalNoDivergence(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	syncedAt := time.Now().Add(-time.Hour)
	localAt := syncedAt.Add(-time.Minute) // local edit predates the sync
	st := &syncdom.State{
		ID: "s1", DocumentID: "doc1", Status: syncdom.StatusSynced,
		LastSyncAt: &syncedAt, LastLocalEditAt: &localAt,
	}

	versions := &mocks.VersionStore{}
	appended := &version.Version{ID: "v2", DocumentID: "doc1", Number: 2, Source: version.SourceWordOnline}
	versions.On("Append", ctx, companyID, mock.Anything).Return(appended, nil)

	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(st, nil)
	states.On("Update", ctx, companyID, mock.Anything).Return(nil)

	conflicts := &mocks.ConflictRepository{}
	svc := newTestService(states, conflicts, versions)

	_, conflict, err := svc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: "doc1",
		Source:     version.SourceWordOnline,
		Snapshot:   snapshot.Object(),
	})
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Equal(t, syncdom.StatusSynced, st.Status)
	require.True(t, st.LastSyncAt.After(syncedAt))
	conflicts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_RecordEdit_DivergenceRaisesConflict(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	syncedAt := time.Now().Add(-time.Hour)
	localAt := time.Now().Add(-time.Minute) // local edit after the last sync
	st := &syncdom.State{
		ID: "s1", DocumentID: "doc1", Status: syncdom.StatusSynced,
		LastSyncAt: &syncedAt, LastLocalEditAt: &localAt,
	}

	versions := &mocks.VersionStore{}
	appended := &version.Version{ID: "v3", DocumentID: "doc1", Number: 3, Source: version.SourceWordOnline}
	versions.On("Append", ctx, companyID, mock.Anything).Return(appended, nil)
	versions.On("History", ctx, companyID, "doc1", mock.Anything).Return([]version.Version{
		{ID: "v3", Number: 3, Source: version.SourceWordOnline},
		{ID: "v2", Number: 2, Source: version.SourceEditor},
		{ID: "v1", Number: 1, Source: version.SourceEditor},
	}, nil)

	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(st, nil)
	states.On("Update", ctx, companyID, mock.Anything).Return(nil)

	conflicts := &mocks.ConflictRepository{}
	conflicts.On("Create", ctx, companyID, mock.Anything).Return(nil)

	svc := newTestService(states, conflicts, versions)
	_, conflict, err := svc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: "doc1",
		Source:     version.SourceWordOnline,
		Snapshot:   snapshot.Object(),
	})
	require.NoError(t, err)
	require.NotNil(t, conflict)
	require.Equal(t, "v3", conflict.CloudVersionID)
	require.Equal(t, "v2", conflict.LocalVersionID)
	require.Equal(t, syncdom.StatusConflict, st.Status)
}

func TestSyncService_RecordEdit_FoldsIntoOpenConflict(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	st := &syncdom.State{ID: "s1", DocumentID: "doc1", Status: syncdom.StatusConflict}

	versions := &mocks.VersionStore{}
	appended := &version.Version{ID: "v4", DocumentID: "doc1", Number: 4, Source: version.SourceEditor}
	versions.On("Append", ctx, companyID, mock.Anything).Return(appended, nil)

	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(st, nil)
	states.On("Update", ctx, companyID, mock.Anything).Return(nil)

	existing := &syncdom.Conflict{ID: "c1", DocumentID: "doc1"}
	conflicts := &mocks.ConflictRepository{}
	conflicts.On("PendingByDocument", ctx, companyID, "doc1").Return(existing, nil)

	svc := newTestService(states, conflicts, versions)
	_, conflict, err := svc.RecordEdit(ctx, companyID, syncdom.EditRequest{
		DocumentID: "doc1",
		Source:     version.SourceEditor,
		Snapshot:   snapshot.Object(),
	})
	require.NoError(t, err)
	require.Equal(t, "c1", conflict.ID)
	// Still in conflict; no second conflict row was created.
	require.Equal(t, syncdom.StatusConflict, st.Status)
	conflicts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncService_Resolve_KeepCloud(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	conflict := &syncdom.Conflict{
		ID: "c1", DocumentID: "doc1", CompanyID: companyID,
		LocalVersionID: "v2", CloudVersionID: "v3",
	}
	conflicts := &mocks.ConflictRepository{}
	conflicts.On("Get", ctx, companyID, "c1").Return(conflict, nil)
	conflicts.On("MarkResolved", ctx, companyID, mock.Anything).Return(nil)

	cloudSnap := snapshot.Object(snapshot.F("body", snapshot.String("cloud wins")))
	versions := &mocks.VersionStore{}
	versions.On("Get", ctx, companyID, "v3").Return(&version.Version{
		ID: "v3", DocumentID: "doc1", Number: 3, Source: version.SourceWordOnline, Snapshot: cloudSnap,
	}, nil)
	resolved := &version.Version{ID: "v4", DocumentID: "doc1", Number: 4, Source: version.SourceEditor, Snapshot: cloudSnap}
	versions.On("Append", ctx, companyID, mock.MatchedBy(func(req version.AppendRequest) bool {
		return req.Source == version.SourceEditor && snapshot.Equal(req.Snapshot, cloudSnap)
	})).Return(resolved, nil)

	st := &syncdom.State{ID: "s1", DocumentID: "doc1", Status: syncdom.StatusConflict}
	states := &mocks.SyncStateRepository{}
	states.On("GetByDocument", ctx, companyID, "doc1").Return(st, nil)
	states.On("Update", ctx, companyID, mock.Anything).Return(nil)

	svc := newTestService(states, conflicts, versions)
	v, err := svc.Resolve(ctx, companyID, syncdom.ResolveRequest{
		ConflictID: "c1",
		Resolution: syncdom.ResolutionKeepCloud,
	})
	require.NoError(t, err)
	require.Equal(t, "v4", v.ID)
	require.Equal(t, syncdom.StatusSynced, st.Status)
	require.NotNil(t, conflict.Resolution)
	require.Equal(t, syncdom.ResolutionKeepCloud, *conflict.Resolution)
	// Resolution appends exactly one version.
	versions.AssertNumberOfCalls(t, "Append", 1)
}

func TestSyncService_Resolve_MergeRequiresSnapshot(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	conflict := &syncdom.Conflict{ID: "c1", DocumentID: "doc1", LocalVersionID: "v2", CloudVersionID: "v3"}
	conflicts := &mocks.ConflictRepository{}
	conflicts.On("Get", ctx, companyID, "c1").Return(conflict, nil)

	svc := newTestService(&mocks.SyncStateRepository{}, conflicts, &mocks.VersionStore{})
	_, err := svc.Resolve(ctx, companyID, syncdom.ResolveRequest{
		ConflictID: "c1",
		Resolution: syncdom.ResolutionMerge,
	})
	require.ErrorIs(t, err, syncdom.ErrMergedSnapshotRequired)
}

func TestSyncService_Resolve_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	res := syncdom.ResolutionKeepMP
	conflict := &syncdom.Conflict{ID: "c1", DocumentID: "doc1", Resolution: &res}
	conflicts := &mocks.ConflictRepository{}
	conflicts.On("Get", ctx, companyID, "c1").Return(conflict, nil)

	svc := newTestService(&mocks.SyncStateRepository{}, conflicts, &mocks.VersionStore{})
	_, err := svc.Resolve(ctx, companyID, syncdom.ResolveRequest{
		ConflictID: "c1",
		Resolution: syncdom.ResolutionKeepMP,
	})
	require.ErrorIs(t, err, syncdom.ErrConflictNotFound)
}

func TestSyncService_GetConflict_NoneIsNil(t *testing.T) {
	ctx := context.Background()

	conflicts := &mocks.ConflictRepository{}
	conflicts.On("PendingByDocument", ctx, "co1", "doc1").Return(nil, repository.ErrNotFound)

	svc := newTestService(&mocks.SyncStateRepository{}, conflicts, &mocks.VersionStore{})
	conflict, err := svc.GetConflict(ctx, "co1", "doc1")
	require.NoError(t, err)
	require.Nil(t, conflict)
}

func TestSyncService_ArtifactStatuses(t *testing.T) {
	ctx := context.Background()
	companyID := "co1"

	editor := "ann"
	versions := &mocks.VersionStore{}
	versions.On("ListDocuments", ctx, companyID).Return([]version.Document{
		{ID: "doc1", DocType: "proposal", Title: "Proposal"},
		{ID: "doc2", DocType: "contract", Title: "Contract"},
	}, nil)
	versions.On("LatestAll", ctx, companyID).Return([]version.Version{
		{
			ID: "v9", DocumentID: "doc1", Number: 9, Source: version.SourceWordOnline, CreatedBy: &editor,
			Snapshot: snapshot.Object(snapshot.F("body", snapshot.String("four words right here"))),
		},
	}, nil)

	states := &mocks.SyncStateRepository{}
	states.On("List", ctx, companyID).Return([]syncdom.State{
		{DocumentID: "doc1", Provider: syncdom.ProviderOneDrive, Status: syncdom.StatusSynced},
	}, nil)

	svc := newTestService(states, &mocks.ConflictRepository{}, versions)
	statuses, err := svc.ArtifactStatuses(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	require.Equal(t, syncdom.StatusSynced, statuses[0].SyncStatus)
	require.Equal(t, 4, statuses[0].WordCount)
	require.Equal(t, &editor, statuses[0].LastEditedBy)

	// doc2 has no versions and no sync state.
	require.Equal(t, syncdom.StatusIdle, statuses[1].SyncStatus)
	require.Nil(t, statuses[1].Provider)
	require.Zero(t, statuses[1].WordCount)
}

func TestMergePreview_ConflictMarkers(t *testing.T) {
	local := snapshot.Object(
		snapshot.F("title", snapshot.String("Shared Title")),
		snapshot.F("body", snapshot.String("alpha\nlocal line\nomega")),
	)
	cloud := snapshot.Object(
		snapshot.F("title", snapshot.String("Shared Title")),
		snapshot.F("body", snapshot.String("alpha\ncloud line\nomega")),
		snapshot.F("footer", snapshot.String("cloud only")),
	)

	merged := syncdom.MergePreview(local, cloud)

	title, _ := snapshot.Get(merged, "title")
	require.Equal(t, "Shared Title", title.StringVal())

	footer, ok := snapshot.Get(merged, "footer")
	require.True(t, ok)
	require.Equal(t, "cloud only", footer.StringVal())

	body, _ := snapshot.Get(merged, "body")
	require.Equal(t, "alpha\n<<<<<<< proposal\nlocal line\n=======\ncloud line\n>>>>>>> cloud\nomega", body.StringVal())
}
