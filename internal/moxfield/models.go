package moxfield

import (
	"encoding/json"
	"sort"

	"github.com/codwats/prism/internal/prism"
)

// UnknownCommander is reported when a deck lists no commander.
const UnknownCommander = "Unknown Commander"

// Entry is one card of a Moxfield board.
type Entry struct {
	Quantity int `json:"quantity"`
	Card     struct {
		Name string `json:"name"`
	} `json:"card"`
}

// Board is a named section of a Moxfield deck, keyed by card ID.
type Board struct {
	Count int              `json:"count"`
	Cards map[string]Entry `json:"cards"`
}

// Deck is the subset of a Moxfield deck PRISM imports.
//
// The v3 API nests sections under boards. Older responses put mainboard and
// commanders at the top level, and commanders may be a list or a map there.
type Deck struct {
	ID        string           `json:"publicId"`
	Name      string           `json:"name"`
	Format    string           `json:"format"`
	Boards    map[string]Board `json:"boards"`
	Mainboard map[string]Entry `json:"mainboard"`

	RawCommanders json.RawMessage `json:"commanders"`
}

func (d *Deck) commanders() []Entry {
	if b, ok := d.Boards["commanders"]; ok && len(b.Cards) > 0 {
		return sortedEntries(b.Cards)
	}
	if len(d.RawCommanders) == 0 {
		return nil
	}

	var list []Entry
	if err := json.Unmarshal(d.RawCommanders, &list); err == nil {
		return list
	}
	var byName map[string]Entry
	if err := json.Unmarshal(d.RawCommanders, &byName); err == nil {
		return sortedEntries(byName)
	}
	return nil
}

func (d *Deck) mainboard() []Entry {
	if b, ok := d.Boards["mainboard"]; ok && len(b.Cards) > 0 {
		return sortedEntries(b.Cards)
	}
	return sortedEntries(d.Mainboard)
}

func sortedEntries(m map[string]Entry) []Entry {
	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Card.Name < out[j].Card.Name })
	return out
}

// CommanderName returns the first commander, or UnknownCommander.
func (d *Deck) CommanderName() string {
	for _, c := range d.commanders() {
		if c.Card.Name != "" {
			return c.Card.Name
		}
	}
	return UnknownCommander
}

// Cards returns the commanders followed by the mainboard, each sorted by name.
// Sideboard and maybeboard are not part of the deck.
func (d *Deck) Cards() []prism.Card {
	var cards []prism.Card
	for _, section := range [][]Entry{d.commanders(), d.mainboard()} {
		for _, e := range section {
			name := prism.NormalizeName(e.Card.Name)
			if name == "" {
				continue
			}
			qty := e.Quantity
			if qty <= 0 {
				qty = 1
			}
			cards = append(cards, prism.Card{Name: name, Quantity: qty})
		}
	}
	return cards
}
