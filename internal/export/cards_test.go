package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codwats/prism/internal/prism"
)

func testDecks() []prism.Deck {
	return []prism.Deck{
		{ID: "a", Name: "Deck A", Bracket: 2, Cards: []prism.Card{{Name: "Sol Ring", Quantity: 1}, {Name: "Island", Quantity: 10}}},
		{ID: "b", Name: "Deck B", Bracket: 3, Cards: []prism.Card{{Name: "Sol Ring", Quantity: 1}, {Name: "Island", Quantity: 12}, {Name: "Lightning Bolt", Quantity: 1}}},
	}
}

func processed(t *testing.T, decks []prism.Deck) *prism.ProcessedData {
	t.Helper()
	data, err := prism.Process(decks, prism.DefaultOptions())
	require.NoError(t, err)
	return data
}

func TestWriteCardsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCardsCSV(&buf, processed(t, testDecks()), 2))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{
		"Card Name", "Quantity", "Total Decks", "Mark Summary",
		"Slot 1 Color", "Slot 1 Deck", "Slot 1 Bracket",
		"Slot 2 Color", "Slot 2 Deck", "Slot 2 Bracket",
	}, records[0])
	assert.Equal(t, []string{
		"Island", "12", "2", "Slot 1: Yellow, Slot 2: Blue",
		"Yellow", "Deck A", "2", "Blue", "Deck B", "3",
	}, records[1])
	assert.Equal(t, []string{
		"Lightning Bolt", "1", "1", "Slot 2: Blue",
		"", "", "", "Blue", "Deck B", "3",
	}, records[3])
}

func TestWriteCardsCSV_DefaultSlots(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCardsCSV(&buf, processed(t, testDecks()), 0))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records[0], 4+3*DefaultSlotColumns)
}

func TestWriteCardsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCardsCSV(&buf, processed(t, nil), 1))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteChangesCSV(t *testing.T) {
	old := processed(t, testDecks()[:1])
	current := processed(t, testDecks())

	var buf bytes.Buffer
	require.NoError(t, WriteChangesCSV(&buf, prism.CalculateDelta(old, current)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Action", "Card Name", "Old Marks", "New Marks", "Physical Action"}, records[0])
	assert.Equal(t, "NEW", records[1][0])
	assert.Equal(t, "Lightning Bolt", records[1][1])
	assert.Equal(t, "UPDATE", records[2][0])
	assert.Equal(t, "Slot 1: Yellow", records[2][2])
	assert.Equal(t, "Slot 1: Yellow, Slot 2: Blue", records[2][3])
}

func TestWriteChangesCSV_NilDelta(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChangesCSV(&buf, nil))
	assert.Equal(t, "Action,Card Name,Old Marks,New Marks,Physical Action\n", buf.String())
}
