package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/repository"
)

func TestAuditRepository_RecordList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewAuditRepository(db)
	user := "ann"
	entry := &audit.Entry{
		Action:     audit.ActionVersionRecorded,
		EntityType: "document_version",
		EntityID:   "v1",
		UserID:     &user,
		Details:    map[string]any{"document_id": "doc1", "version_number": float64(3)},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Record(ctx, "co1", entry))
	require.NotZero(t, entry.ID)

	require.NoError(t, repo.Record(ctx, "co1", &audit.Entry{
		Action:     audit.ActionConflictDetected,
		EntityType: "sync_conflict",
		EntityID:   "c1",
		CreatedAt:  time.Now(),
	}))

	all, err := repo.List(ctx, "co1", audit.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, audit.ActionConflictDetected, all[0].Action)

	filtered, err := repo.List(ctx, "co1", audit.ListOptions{Action: audit.ActionVersionRecorded})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "doc1", filtered[0].Details["document_id"])
	require.Equal(t, &user, filtered[0].UserID)

	other, err := repo.List(ctx, "co2", audit.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestAPIKeyRepository_CreateResolve(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewAPIKeyRepository(db)
	require.NoError(t, repo.Create(ctx, "co1", "secret-key", "ci"))

	companyID, err := repo.Resolve(ctx, "secret-key")
	require.NoError(t, err)
	require.Equal(t, "co1", companyID)

	_, err = repo.Resolve(ctx, "wrong-key")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.Create(ctx, "co2", "secret-key", "dup"), repository.ErrDuplicate)
}
