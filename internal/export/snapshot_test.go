package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codwats/prism/internal/prism"
)

func testCollection(t *testing.T) (*prism.Collection, *prism.ProcessedData) {
	t.Helper()
	c := &prism.Collection{ID: "c1", Name: "Pod", Decks: testDecks(), MarkedCards: []string{"sol ring"}}
	return c, processed(t, c.Decks)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c, data := testCollection(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, BuildSnapshot(c, data, now)))

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &generic))
	for _, key := range []string{"version", "generatedAt", "collection", "decks", "cards", "statistics", "colorPalette"} {
		assert.Contains(t, generic, key)
	}
	assert.Equal(t, SnapshotVersion, generic["version"])

	loaded, err := LoadSnapshot(&buf)
	require.NoError(t, err)
	assert.True(t, now.Equal(loaded.GeneratedAt))
	assert.Equal(t, "Pod", loaded.Collection.Name)
	assert.Equal(t, data.Cards, loaded.Cards)
	assert.Equal(t, data.Stats, loaded.Statistics)

	rebuilt := loaded.ToCollection()
	assert.Equal(t, "c1", rebuilt.ID)
	require.Len(t, rebuilt.Decks, 2)
	assert.Equal(t, "Deck A", rebuilt.Decks[0].Name)
	assert.Equal(t, "#ECC933", rebuilt.Decks[0].AssignedColor)
	assert.Equal(t, c.Decks[1].Cards, rebuilt.Decks[1].Cards)
	assert.True(t, rebuilt.IsMarked("Sol Ring"))

	// Reprocessing the rebuilt collection gives the same sleeves.
	again := processed(t, rebuilt.Decks)
	assert.Empty(t, prism.CalculateDelta(loaded.ProcessedData(), again).Changes)
}

func TestLoadSnapshot_Legacy(t *testing.T) {
	legacy := `{
		"version": "1.0",
		"generatedAt": "2023-11-02T08:00:00Z",
		"name": "Old Pod",
		"decks": [
			{"id": "d1", "name": "Atraxa", "bracket": 3, "color": "#ECC933", "stripePosition": 1},
			{"id": "d2", "name": "Krenko", "bracket": 2, "color": "#558CC1", "stripePosition": 2}
		],
		"cards": [
			{"name": "Sol Ring", "deckIds": ["d1", "d2"]},
			{"name": "Goblin Chieftain", "deckIds": ["d2"]},
			{"name": "Ghost Card", "deckIds": ["missing"]}
		]
	}`

	s, err := LoadSnapshot(strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, s.Version)
	assert.Equal(t, "Old Pod", s.Collection.Name)
	require.Len(t, s.Decks, 2)
	assert.Equal(t, []prism.Card{{Name: "Sol Ring", Quantity: 1}}, s.Decks[0].Cards)
	assert.Equal(t, []prism.Card{{Name: "Sol Ring", Quantity: 1}, {Name: "Goblin Chieftain", Quantity: 1}}, s.Decks[1].Cards)
	assert.Equal(t, "#558CC1", s.ColorPalette["d2"])

	c := s.ToCollection()
	assert.Equal(t, "Krenko", c.Decks[1].Name)
	assert.NotNil(t, c.MarkedCards)
}

func TestLoadSnapshot_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":    "{",
		"no version":  `{"decks": []}`,
		"unsupported": `{"version": "9"}`,
		"bad body":    `{"version": "2", "decks": "nope"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSnapshot(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
