// Package models contains the row types persisted by the storage repositories.
package models

import "time"

// Collection is a row of the collections table.
type Collection struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deck is a row of the decks table. Position is the deck's 1-based stripe slot.
type Deck struct {
	ID           string
	CollectionID string
	Position     int
	Name         string
	Commander    string
	Bracket      int
	Color        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeckCard is one decklist line. Seq keeps the order the user entered.
type DeckCard struct {
	DeckID   string
	Seq      int
	Name     string
	Quantity int
}

// MarkedCard records that a card's sleeve has been painted for the current stripes.
type MarkedCard struct {
	CollectionID string
	CardKey      string
	MarkedAt     time.Time
}

// Snapshot is a stored processing result. Data holds the JSON encoded result and
// Fingerprint identifies its physical marking state.
type Snapshot struct {
	ID           int64
	CollectionID string
	Fingerprint  string
	DeckCount    int
	CardCount    int
	Data         string
	CreatedAt    time.Time
}

// CardCacheEntry is a cached card lookup.
type CardCacheEntry struct {
	CardKey   string
	Name      string
	Data      string
	FetchedAt time.Time
}
