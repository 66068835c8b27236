package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/codwats/prism/internal/prism"
)

const (
	// SnapshotVersion is written by WriteSnapshot.
	SnapshotVersion = "2"

	legacySnapshotVersion = "1.0"
)

// SnapshotCollection identifies the collection a snapshot was taken from.
type SnapshotCollection struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MarkedCards []string `json:"markedCards"`
}

// Snapshot is the versioned JSON export of a processed collection. Decks carry
// their full card lists so the collection can be rebuilt on import.
type Snapshot struct {
	Version      string                `json:"version"`
	GeneratedAt  time.Time             `json:"generatedAt"`
	Collection   SnapshotCollection    `json:"collection"`
	Decks        []prism.Deck          `json:"decks"`
	Cards        []prism.ProcessedCard `json:"cards"`
	Statistics   prism.Statistics      `json:"statistics"`
	ColorPalette map[string]string     `json:"colorPalette"`
}

// BuildSnapshot assembles the export of a collection and its processing result.
func BuildSnapshot(c *prism.Collection, data *prism.ProcessedData, now time.Time) *Snapshot {
	marked := append([]string{}, c.MarkedCards...)
	return &Snapshot{
		Version:     SnapshotVersion,
		GeneratedAt: now.UTC(),
		Collection: SnapshotCollection{
			ID:          c.ID,
			Name:        c.Name,
			MarkedCards: marked,
		},
		Decks:        data.Decks,
		Cards:        data.Cards,
		Statistics:   data.Stats,
		ColorPalette: data.ColorPalette,
	}
}

// WriteSnapshot writes s as indented JSON.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	return writeJSON(w, s, true)
}

// ToCollection rebuilds the collection stored in the snapshot, decks in stripe order.
func (s *Snapshot) ToCollection() *prism.Collection {
	decks := make([]prism.Deck, len(s.Decks))
	for i, d := range s.Decks {
		decks[i] = d.Clone()
	}
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].StripePosition < decks[j].StripePosition
	})

	c := &prism.Collection{
		ID:          s.Collection.ID,
		Name:        s.Collection.Name,
		Decks:       decks,
		MarkedCards: append([]string{}, s.Collection.MarkedCards...),
		CreatedAt:   s.GeneratedAt,
		UpdatedAt:   s.GeneratedAt,
	}
	if c.MarkedCards == nil {
		c.MarkedCards = []string{}
	}
	sort.Strings(c.MarkedCards)
	return c
}

// ProcessedData returns the processing result stored in the snapshot.
func (s *Snapshot) ProcessedData() *prism.ProcessedData {
	return &prism.ProcessedData{
		Decks:        s.Decks,
		Cards:        s.Cards,
		ColorPalette: s.ColorPalette,
		Stats:        s.Statistics,
	}
}

// legacyDeck is a deck of a version 1.0 snapshot, which stored no card lists.
type legacyDeck struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Commander      string    `json:"commander"`
	Bracket        int       `json:"bracket"`
	Color          string    `json:"color"`
	StripePosition int       `json:"stripePosition"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type legacyCard struct {
	Name    string   `json:"name"`
	DeckIDs []string `json:"deckIds"`
}

type legacySnapshot struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Name        string       `json:"name"`
	Decks       []legacyDeck `json:"decks"`
	Cards       []legacyCard `json:"cards"`
}

// LoadSnapshot reads a snapshot of any supported version and migrates it to the
// current one.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var head struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return migrateSnapshot(head.Version, raw)
}

func migrateSnapshot(version string, raw []byte) (*Snapshot, error) {
	switch version {
	case SnapshotVersion:
		var s Snapshot
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		return &s, nil

	case legacySnapshotVersion:
		var legacy legacySnapshot
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("failed to parse version %s snapshot: %w", version, err)
		}
		return migrateLegacy(&legacy), nil

	case "":
		return nil, fmt.Errorf("snapshot has no version")
	default:
		return nil, fmt.Errorf("unsupported snapshot version %q", version)
	}
}

// migrateLegacy rebuilds deck card lists from the per-card deck IDs. Quantities
// were not stored, so every card comes back as a single copy.
func migrateLegacy(l *legacySnapshot) *Snapshot {
	index := make(map[string]int, len(l.Decks))
	decks := make([]prism.Deck, len(l.Decks))
	palette := make(map[string]string, len(l.Decks))
	for i, d := range l.Decks {
		index[d.ID] = i
		decks[i] = prism.Deck{
			ID:             d.ID,
			Name:           d.Name,
			Commander:      d.Commander,
			Bracket:        d.Bracket,
			Cards:          []prism.Card{},
			AssignedColor:  d.Color,
			StripePosition: d.StripePosition,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		}
		palette[d.ID] = d.Color
	}

	for _, c := range l.Cards {
		for _, id := range c.DeckIDs {
			if i, ok := index[id]; ok {
				decks[i].Cards = append(decks[i].Cards, prism.Card{Name: c.Name, Quantity: 1})
			}
		}
	}

	return &Snapshot{
		Version:      SnapshotVersion,
		GeneratedAt:  l.GeneratedAt,
		Collection:   SnapshotCollection{Name: l.Name, MarkedCards: []string{}},
		Decks:        decks,
		Cards:        []prism.ProcessedCard{},
		ColorPalette: palette,
	}
}
