package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codwats/prism/internal/storage/models"
)

func TestCollectionRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	c := createTestCollection(t, db, "c1", "Friday")

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Friday", got.Name)
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

	c.Name = "Friday Night"
	c.UpdatedAt = c.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, c))

	got, err = repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Friday Night", got.Name)
	assert.True(t, got.UpdatedAt.Equal(c.UpdatedAt))
}

func TestCollectionRepository_GetMissing(t *testing.T) {
	repo := NewCollectionRepository(setupTestDB(t))

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCollectionRepository_ListOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "new", "middle"} {
		updated := base.Add(time.Duration([]int{0, 2, 1}[i]) * time.Hour)
		require.NoError(t, repo.Upsert(ctx, &models.Collection{
			ID: name, Name: name, CreatedAt: base, UpdatedAt: updated,
		}))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].Name)
	assert.Equal(t, "middle", list[1].Name)
	assert.Equal(t, "old", list[2].Name)
}

func TestCollectionRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	decks := NewDeckRepository(db)
	ctx := context.Background()

	c := createTestCollection(t, db, "c1", "test")
	require.NoError(t, decks.Create(ctx, &models.Deck{
		ID: "d1", CollectionID: c.ID, Position: 1, Name: "A", Bracket: 2,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}))

	deleted, err := repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	remaining, err := decks.ListByCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	deleted, err = repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
