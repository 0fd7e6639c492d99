package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/propside/syncd/internal/domain/diff"
	"github.com/propside/syncd/internal/domain/version"
	"github.com/propside/syncd/internal/repository"
	"github.com/propside/syncd/internal/snapshot"
)

func testVersion(id, docID string, number int) *version.Version {
	return &version.Version{
		ID:         id,
		DocumentID: docID,
		CompanyID:  "co1",
		Number:     number,
		Source:     version.SourceEditor,
		Snapshot:   snapshot.Object(snapshot.F("n", snapshot.Number(float64(number)))),
		CreatedAt:  time.Now(),
	}
}

func TestVersionRepository_InsertGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	repo := NewVersionRepository(db)
	author := "ann"
	v := testVersion("v1", "doc1", 1)
	v.CreatedBy = &author
	v.Diff = &diff.Summary{Modifications: 2, SectionsChanged: []string{"pricing"}}

	require.NoError(t, repo.Insert(ctx, "co1", v))

	loaded, err := repo.Get(ctx, "co1", "v1")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Number)
	require.Equal(t, version.SourceEditor, loaded.Source)
	require.Equal(t, &author, loaded.CreatedBy)
	require.True(t, snapshot.Equal(v.Snapshot, loaded.Snapshot))
	require.NotNil(t, loaded.Diff)
	require.Equal(t, []string{"pricing"}, loaded.Diff.SectionsChanged)
}

func TestVersionRepository_DuplicateNumber(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	repo := NewVersionRepository(db)
	require.NoError(t, repo.Insert(ctx, "co1", testVersion("v1", "doc1", 1)))

	err := repo.Insert(ctx, "co1", testVersion("v2", "doc1", 1))
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestVersionRepository_UnknownDocument(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewVersionRepository(db)
	err := repo.Insert(ctx, "co1", testVersion("v1", "nope", 1))
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestVersionRepository_LatestAndHistory(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	repo := NewVersionRepository(db)
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Insert(ctx, "co1", testVersion(fmt.Sprintf("v%d", i), "doc1", i)))
	}

	latest, err := repo.Latest(ctx, "co1", "doc1")
	require.NoError(t, err)
	require.Equal(t, 5, latest.Number)

	history, err := repo.History(ctx, "co1", "doc1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, 5, history[0].Number)
	require.Equal(t, 3, history[2].Number)
}

func TestVersionRepository_LatestAll(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")
	insertDocument(t, db, "doc2", "co1", "contract")

	repo := NewVersionRepository(db)
	require.NoError(t, repo.Insert(ctx, "co1", testVersion("a1", "doc1", 1)))
	require.NoError(t, repo.Insert(ctx, "co1", testVersion("a2", "doc1", 2)))
	require.NoError(t, repo.Insert(ctx, "co1", testVersion("b1", "doc2", 1)))

	latest, err := repo.LatestAll(ctx, "co1")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	byDoc := map[string]int{}
	for _, v := range latest {
		byDoc[v.DocumentID] = v.Number
	}
	require.Equal(t, 2, byDoc["doc1"])
	require.Equal(t, 1, byDoc["doc2"])
}

func TestVersionRepository_TenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertDocument(t, db, "doc1", "co1", "proposal")

	repo := NewVersionRepository(db)
	require.NoError(t, repo.Insert(ctx, "co1", testVersion("v1", "doc1", 1)))

	_, err := repo.Get(ctx, "co2", "v1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Latest(ctx, "co2", "doc1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

// TestConcurrentAppends drives the whole append path from many goroutines
// and verifies the version sequence comes out gap-free.
func TestConcurrentAppends(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	docsRepo := NewDocumentRepository(db)
	versionsRepo := NewVersionRepository(db)
	svc := version.NewService(docsRepo, versionsRepo, nil, nil)

	doc, err := svc.CreateDocument(ctx, "co1", version.CreateDocumentRequest{
		DocType: "proposal",
		Title:   "Contended",
	})
	require.NoError(t, err)

	const writers = 4
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Append(ctx, "co1", version.AppendRequest{
				DocumentID: doc.ID,
				Source:     version.SourceEditor,
				Snapshot:   snapshot.Object(snapshot.F("writer", snapshot.Number(float64(i)))),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	history, err := versionsRepo.History(ctx, "co1", doc.ID, writers+1)
	require.NoError(t, err)
	require.Len(t, history, writers)
	for i, v := range history {
		require.Equal(t, writers-i, v.Number, "sequence must be gap-free")
	}
}
