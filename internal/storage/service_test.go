package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codwats/prism/internal/prism"
)

func testCollection(t *testing.T) *prism.Collection {
	t.Helper()

	c := prism.NewCollection("Playgroup")
	decks := []prism.DeckInput{
		{Name: "Atraxa", Commander: "Atraxa, Praetors' Voice", Bracket: 3, Cards: []prism.Card{
			{Name: "Sol Ring", Quantity: 1}, {Name: "Forest", Quantity: 8}, {Name: "Doubling Season", Quantity: 1},
		}},
		{Name: "Krenko", Commander: "Krenko, Mob Boss", Bracket: 2, Cards: []prism.Card{
			{Name: "Sol Ring", Quantity: 1}, {Name: "Mountain", Quantity: 30},
		}},
	}
	for _, in := range decks {
		require.NoError(t, c.AddDeck(prism.NewDeck(in), 0))
	}
	return c
}

func TestService_SaveAndGetCollection(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c := testCollection(t)
	c.SetMarked("Sol Ring", true)
	require.NoError(t, svc.SaveCollection(ctx, c))

	got, err := svc.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	require.Len(t, got.Decks, 2)
	assert.Equal(t, "Atraxa", got.Decks[0].Name)
	assert.Equal(t, "Krenko", got.Decks[1].Name)
	assert.Equal(t, c.Decks[0].AssignedColor, got.Decks[0].AssignedColor)
	assert.Equal(t, 3, got.Decks[0].Bracket)
	assert.Equal(t, c.Decks[0].Cards, got.Decks[0].Cards)
	assert.Equal(t, []string{"sol ring"}, got.MarkedCards)
	assert.True(t, got.IsMarked("SOL RING"))
}

func TestService_SaveCollectionReplacesDecks(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c := testCollection(t)
	require.NoError(t, svc.SaveCollection(ctx, c))

	// Swap the decks so both positions change.
	reordered, err := prism.ReorderDecks(c.Decks, []int{1, 0})
	require.NoError(t, err)
	c.SetDecks(reordered)
	_, err = c.RemoveDeck(c.Decks[1].ID)
	require.NoError(t, err)
	require.NoError(t, svc.SaveCollection(ctx, c))

	got, err := svc.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Decks, 1)
	assert.Equal(t, "Krenko", got.Decks[0].Name)
}

func TestService_SaveCollectionKeepsPositions(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c := testCollection(t)
	_, err := c.RemoveDeck(c.Decks[0].ID)
	require.NoError(t, err)
	require.NoError(t, svc.SaveCollection(ctx, c))

	got, err := svc.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Decks, 1)
	assert.Equal(t, "Krenko", got.Decks[0].Name)
	assert.Equal(t, 2, got.Decks[0].StripePosition, "slot 1 stays free")
}

func TestService_SaveProcessed(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c := testCollection(t)
	c.SetMarked("Sol Ring", true)
	data, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)

	saved, err := svc.SaveProcessed(ctx, c, data)
	require.NoError(t, err)
	assert.True(t, saved)
	latest, err := svc.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)

	// A failed snapshot write rolls the collection back too.
	_, err = svc.db.Conn().ExecContext(ctx, "DROP TABLE snapshots")
	require.NoError(t, err)

	c.SetMarked("Sol Ring", false)
	c.Decks[0].Cards = append(c.Decks[0].Cards, prism.Card{Name: "Rhystic Study", Quantity: 1})
	data, err = prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)
	_, err = svc.SaveProcessed(ctx, c, data)
	require.Error(t, err)

	got, err := svc.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsMarked("Sol Ring"))
	assert.Len(t, got.Decks[0].Cards, 3)
}

func TestService_SaveCollectionRequiresID(t *testing.T) {
	svc := setupTestService(t)
	err := svc.SaveCollection(context.Background(), &prism.Collection{Name: "no id"})
	assert.Error(t, err)
}

func TestService_GetCollectionNotFound(t *testing.T) {
	svc := setupTestService(t)
	_, err := svc.GetCollection(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
}

func TestService_CurrentCollection(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.GetCurrentCollection(ctx)
	assert.True(t, errors.Is(err, ErrNoCurrentCollection))

	err = svc.SetCurrentCollection(ctx, "missing")
	assert.True(t, errors.Is(err, ErrCollectionNotFound))

	c := testCollection(t)
	require.NoError(t, svc.SaveCollection(ctx, c))
	other := prism.NewCollection("Other")
	require.NoError(t, svc.SaveCollection(ctx, other))

	require.NoError(t, svc.SetCurrentCollection(ctx, c.ID))
	current, err := svc.GetCurrentCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, current.ID)

	list, err := svc.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[string]CollectionSummary{}
	for _, s := range list {
		byID[s.ID] = s
	}
	assert.True(t, byID[c.ID].Current)
	assert.Equal(t, 2, byID[c.ID].DeckCount)
	assert.False(t, byID[other.ID].Current)
	assert.Equal(t, 0, byID[other.ID].DeckCount)
}

func TestService_DeleteCollection(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	c := testCollection(t)
	require.NoError(t, svc.SaveCollection(ctx, c))
	require.NoError(t, svc.SetCurrentCollection(ctx, c.ID))

	data, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)
	_, err = svc.SaveSnapshot(ctx, c.ID, data)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCollection(ctx, c.ID))

	_, err = svc.GetCollection(ctx, c.ID)
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
	_, err = svc.GetCurrentCollection(ctx)
	assert.True(t, errors.Is(err, ErrNoCurrentCollection))

	snap, err := svc.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, snap)

	err = svc.DeleteCollection(ctx, c.ID)
	assert.True(t, errors.Is(err, ErrCollectionNotFound))
}

func TestService_Snapshots(t *testing.T) {
	svc := setupTestService(t)
	svc.SetSnapshotRetention(2)
	ctx := context.Background()

	c := testCollection(t)
	require.NoError(t, svc.SaveCollection(ctx, c))

	snap, err := svc.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, snap)

	data, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)

	saved, err := svc.SaveSnapshot(ctx, c.ID, data)
	require.NoError(t, err)
	assert.True(t, saved)

	// Identical marking state is not stored twice.
	again, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)
	saved, err = svc.SaveSnapshot(ctx, c.ID, again)
	require.NoError(t, err)
	assert.False(t, saved)

	for _, name := range []string{"Rhystic Study", "Cyclonic Rift"} {
		c.Decks[0].Cards = append(c.Decks[0].Cards, prism.Card{Name: name, Quantity: 1})
		data, err = prism.Process(c.Decks, prism.DefaultOptions())
		require.NoError(t, err)
		saved, err = svc.SaveSnapshot(ctx, c.ID, data)
		require.NoError(t, err)
		assert.True(t, saved)
	}

	list, err := svc.ListSnapshots(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2, "retention keeps the newest two")
	assert.Equal(t, len(data.Cards), list[0].CardCount)
	assert.Equal(t, 2, list[0].DeckCount)

	latest, err := svc.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	_, ok := latest.Card("cyclonic rift")
	assert.True(t, ok)
	assert.Empty(t, prism.CalculateDelta(latest, data).Changes)
}

func TestFingerprint(t *testing.T) {
	c := testCollection(t)
	a, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	assert.Len(t, fa, 64)

	// Renaming a deck does not change any sleeve.
	c.Decks[0].Name = "Atraxa Superfriends"
	b, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	c.Decks[1].Cards = c.Decks[1].Cards[:1]
	d, err := prism.Process(c.Decks, prism.DefaultOptions())
	require.NoError(t, err)
	fd, err := Fingerprint(d)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fd)
}

func TestService_CardCache(t *testing.T) {
	svc := setupTestService(t)
	entry, err := svc.CardCache().Get(context.Background(), "sol ring")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
