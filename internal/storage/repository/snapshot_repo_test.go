package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codwats/prism/internal/storage/models"
)

func TestSnapshotRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	c := createTestCollection(t, db, "c1", "test")

	latest, err := repo.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i := 1; i <= 4; i++ {
		s := &models.Snapshot{
			CollectionID: c.ID,
			Fingerprint:  fmt.Sprintf("fp%d", i),
			DeckCount:    i,
			CardCount:    i * 10,
			Data:         fmt.Sprintf(`{"n":%d}`, i),
			CreatedAt:    c.CreatedAt.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, s))
		assert.NotZero(t, s.ID)
	}

	latest, err = repo.Latest(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "fp4", latest.Fingerprint)
	assert.Equal(t, `{"n":4}`, latest.Data)

	list, err := repo.List(ctx, c.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "fp4", list[0].Fingerprint)
	assert.Empty(t, list[0].Data)

	removed, err := repo.Prune(ctx, c.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	all, err := repo.List(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fp3", all[1].Fingerprint)

	require.NoError(t, repo.DeleteByCollection(ctx, c.ID))
	latest, err = repo.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
