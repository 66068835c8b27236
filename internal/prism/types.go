// Package prism implements the card deduplication and stripe assignment engine.
//
// Given the decks of a collection it computes every unique card, which decks need it,
// a fixed colour and slot position per deck, summary statistics and the delta between
// two processed snapshots. Everything in this package is a pure function over values:
// no I/O, no shared state, no locking.
package prism

import "time"

// Card is a single decklist entry.
// Quantity only matters for basic lands; every other card is a singleton.
type Card struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Deck is a Commander deck owned by a Collection.
type Deck struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Commander      string    `json:"commander"`
	Bracket        int       `json:"bracket"`
	Cards          []Card    `json:"cards"`
	AssignedColor  string    `json:"assignedColor"`
	StripePosition int       `json:"stripePosition,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CardCount returns the total number of physical cards in the deck.
func (d Deck) CardCount() int {
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	return total
}

// Clone returns a copy of the deck that shares no memory with d.
func (d Deck) Clone() Deck {
	out := d
	if d.Cards != nil {
		out.Cards = make([]Card, len(d.Cards))
		copy(out.Cards, d.Cards)
	}
	return out
}

func cloneDecks(decks []Deck) []Deck {
	out := make([]Deck, len(decks))
	for i, d := range decks {
		out[i] = d.Clone()
	}
	return out
}

// MarkSlot is one deck's stripe on a card sleeve.
type MarkSlot struct {
	Position int    `json:"position"`
	Color    string `json:"color"`
	DeckName string `json:"deckName"`
	DeckID   string `json:"deckId"`
	Bracket  int    `json:"bracket"`
}

// ProcessedCard is a unique card across all decks of a collection.
type ProcessedCard struct {
	CanonicalName string     `json:"canonicalName"`
	NormalizedKey string     `json:"normalizedKey"`
	IsBasicLand   bool       `json:"isBasicLand"`
	TotalQuantity int        `json:"totalQuantity"`
	DeckCount     int        `json:"deckCount"`
	DeckIDs       []string   `json:"deckIds"`
	MarkSlots     []MarkSlot `json:"markSlots"`
	MarkSummary   string     `json:"markSummary"`
}

// SharedCard is an entry of Statistics.MostSharedCards.
type SharedCard struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Decks []string `json:"decks"`
}

// Statistics summarizes a processing pass.
type Statistics struct {
	TotalDecks       int          `json:"totalDecks"`
	TotalUniqueCards int          `json:"totalUniqueCards"`
	TotalCardSlots   int          `json:"totalCardSlots"`
	SharedCards      int          `json:"sharedCards"`
	MostSharedCards  []SharedCard `json:"mostSharedCards"`
}

// ProcessedData is the result of Process.
// Decks carry their assigned colour and stripe position.
type ProcessedData struct {
	Decks        []Deck            `json:"decks"`
	Cards        []ProcessedCard   `json:"cards"`
	ColorPalette map[string]string `json:"colorPalette"` // deck ID -> colour
	Stats        Statistics        `json:"stats"`
}

// Card returns the processed card with the given normalized key.
func (p *ProcessedData) Card(key string) (ProcessedCard, bool) {
	if p == nil {
		return ProcessedCard{}, false
	}
	for _, c := range p.Cards {
		if c.NormalizedKey == key {
			return c, true
		}
	}
	return ProcessedCard{}, false
}

// Options holds the injected configuration of a processing pass.
type Options struct {
	// Palette is the ordered list of stripe colours. Empty means DefaultPalette.
	Palette []string

	// MaxDecks caps the number of decks in a collection. 0 means no limit.
	MaxDecks int
}

// DefaultOptions returns the default palette with a 15 deck limit.
func DefaultOptions() Options {
	return Options{
		Palette:  DefaultPalette(),
		MaxDecks: 15,
	}
}

func (o Options) palette() []string {
	if len(o.Palette) == 0 {
		return DefaultPalette()
	}
	return o.Palette
}
