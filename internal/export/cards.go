package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/codwats/prism/internal/prism"
)

// DefaultSlotColumns is the number of slot column triples written when the caller
// asks for none. It matches the default deck limit.
const DefaultSlotColumns = 15

// CardsCSVHeader returns the header of the cards CSV for the given slot count.
func CardsCSVHeader(slots int) []string {
	header := []string{"Card Name", "Quantity", "Total Decks", "Mark Summary"}
	for i := 1; i <= slots; i++ {
		header = append(header,
			fmt.Sprintf("Slot %d Color", i),
			fmt.Sprintf("Slot %d Deck", i),
			fmt.Sprintf("Slot %d Bracket", i),
		)
	}
	return header
}

// WriteCardsCSV writes one row per unique card. Column triple i describes stripe
// position i and is blank when the card is not in that deck. slots is raised to the
// highest position in use so no stripe is dropped.
func WriteCardsCSV(w io.Writer, data *prism.ProcessedData, slots int) error {
	if slots <= 0 {
		slots = DefaultSlotColumns
	}
	for _, d := range data.Decks {
		slots = max(slots, d.StripePosition)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(CardsCSVHeader(slots)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, card := range data.Cards {
		row := make([]string, 4, 4+3*slots)
		row[0] = card.CanonicalName
		row[1] = strconv.Itoa(card.TotalQuantity)
		row[2] = strconv.Itoa(card.DeckCount)
		row[3] = card.MarkSummary

		byPosition := make(map[int]prism.MarkSlot, len(card.MarkSlots))
		for _, s := range card.MarkSlots {
			byPosition[s.Position] = s
		}
		for i := 1; i <= slots; i++ {
			s, ok := byPosition[i]
			if !ok {
				row = append(row, "", "", "")
				continue
			}
			row = append(row, prism.ColorName(s.Color), s.DeckName, strconv.Itoa(s.Bracket))
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", card.CanonicalName, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ChangeRow is one line of the changes CSV.
type ChangeRow struct {
	Action         string `csv:"Action"`
	CardName       string `csv:"Card Name"`
	OldMarks       string `csv:"Old Marks"`
	NewMarks       string `csv:"New Marks"`
	PhysicalAction string `csv:"Physical Action"`
}

// ChangeRows flattens a delta into CSV rows, keeping its order.
func ChangeRows(delta *prism.Delta) []ChangeRow {
	if delta == nil {
		return []ChangeRow{}
	}
	rows := make([]ChangeRow, len(delta.Changes))
	for i, c := range delta.Changes {
		rows[i] = ChangeRow{
			Action:         string(c.Action),
			CardName:       c.CardName,
			OldMarks:       c.OldMarkSummary,
			NewMarks:       c.NewMarkSummary,
			PhysicalAction: c.PhysicalAction,
		}
	}
	return rows
}

// WriteChangesCSV writes the cards that need re-marking. An empty delta writes
// only the header.
func WriteChangesCSV(w io.Writer, delta *prism.Delta) error {
	return writeStructsCSV(w, ChangeRows(delta))
}
