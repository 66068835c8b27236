package prism

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// mostSharedLimit is the number of cards reported in Statistics.MostSharedCards.
const mostSharedLimit = 5

// Process deduplicates the cards of decks and builds stripe marking data.
//
// Stripe positions use fixed global slots: a deck's slot is the same on every card,
// so "deck 3 is always slot 3". Decks keep the position they carry and new decks
// take the lowest free one (see AssignPositions); colours come from AssignColors.
// The input decks are not modified; the returned ProcessedData carries copies with
// AssignedColor and StripePosition filled in, in stripe order.
func Process(decks []Deck, opts Options) (*ProcessedData, error) {
	if opts.MaxDecks > 0 && len(decks) > opts.MaxDecks {
		return nil, &TooManyDecksError{Decks: len(decks), Limit: opts.MaxDecks}
	}

	colors, err := AssignColors(decks, opts.palette())
	if err != nil {
		return nil, err
	}

	positions := AssignPositions(decks)

	placed := cloneDecks(decks)
	palette := make(map[string]string, len(placed))
	for i := range placed {
		placed[i].AssignedColor = colors[placed[i].ID]
		placed[i].StripePosition = positions[placed[i].ID]
		palette[placed[i].ID] = placed[i].AssignedColor
	}
	sortByPosition(placed)

	cards := buildCards(placed)
	sortCards(cards)

	return &ProcessedData{
		Decks:        placed,
		Cards:        cards,
		ColorPalette: palette,
		Stats:        calculateStatistics(placed, cards),
	}, nil
}

// cardEntry accumulates one normalized card while decks are scanned.
type cardEntry struct {
	name       string
	key        string
	basic      bool
	decks      []int // deck indices, ascending
	quantities []int // quantity per entry of decks
}

func buildCards(decks []Deck) []ProcessedCard {
	index := make(map[string]*cardEntry)
	var order []string

	for i, deck := range decks {
		for _, card := range deck.Cards {
			key := CardKey(card.Name)
			if key == "" {
				continue
			}

			entry, ok := index[key]
			if !ok {
				entry = &cardEntry{
					name:  NormalizeName(card.Name),
					key:   key,
					basic: IsBasicLand(card.Name),
				}
				index[key] = entry
				order = append(order, key)
			}

			qty := max(card.Quantity, 1)
			if n := len(entry.decks); n > 0 && entry.decks[n-1] == i {
				// Same card listed twice in one deck.
				entry.quantities[n-1] += qty
				continue
			}
			entry.decks = append(entry.decks, i)
			entry.quantities = append(entry.quantities, qty)
		}
	}

	cards := make([]ProcessedCard, 0, len(order))
	for _, key := range order {
		entry := index[key]

		card := ProcessedCard{
			CanonicalName: entry.name,
			NormalizedKey: entry.key,
			IsBasicLand:   entry.basic,
			TotalQuantity: 1,
			DeckCount:     len(entry.decks),
			DeckIDs:       make([]string, 0, len(entry.decks)),
			MarkSlots:     make([]MarkSlot, 0, len(entry.decks)),
		}

		if entry.basic {
			for _, q := range entry.quantities {
				card.TotalQuantity = max(card.TotalQuantity, q)
			}
		}

		for _, di := range entry.decks {
			deck := decks[di]
			card.DeckIDs = append(card.DeckIDs, deck.ID)
			card.MarkSlots = append(card.MarkSlots, MarkSlot{
				Position: deck.StripePosition,
				Color:    deck.AssignedColor,
				DeckName: deck.Name,
				DeckID:   deck.ID,
				Bracket:  deck.Bracket,
			})
		}
		card.MarkSummary = MarkSummary(card.MarkSlots)

		cards = append(cards, card)
	}

	return cards
}

// MarkSummary renders slots as "Slot 1: Yellow, Slot 3: Red".
// It depends only on slot positions and colours.
func MarkSummary(slots []MarkSlot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = fmt.Sprintf("Slot %d: %s", s.Position, ColorName(s.Color))
	}
	return strings.Join(parts, ", ")
}

// nameCollator orders card names the way a reader expects: case and accents are
// secondary to the letters themselves. Byte order breaks remaining ties.
type nameCollator struct {
	c *collate.Collator
}

func newNameCollator() *nameCollator {
	return &nameCollator{c: collate.New(language.English)}
}

func (n *nameCollator) compare(a, b string) int {
	if r := n.c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// sortCards orders cards by deck count descending, then by name.
func sortCards(cards []ProcessedCard) {
	names := newNameCollator()
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].DeckCount != cards[j].DeckCount {
			return cards[i].DeckCount > cards[j].DeckCount
		}
		return names.compare(cards[i].CanonicalName, cards[j].CanonicalName) < 0
	})
}

func calculateStatistics(decks []Deck, cards []ProcessedCard) Statistics {
	stats := Statistics{
		TotalDecks:       len(decks),
		TotalUniqueCards: len(cards),
		MostSharedCards:  []SharedCard{},
	}

	// Counted the way buildCards indexes them.
	for _, deck := range decks {
		for _, card := range deck.Cards {
			if CardKey(card.Name) == "" {
				continue
			}
			stats.TotalCardSlots += max(card.Quantity, 1)
		}
	}

	for _, card := range cards {
		if card.DeckCount < 2 {
			continue
		}
		stats.SharedCards++

		if len(stats.MostSharedCards) < mostSharedLimit {
			names := make([]string, len(card.MarkSlots))
			for i, slot := range card.MarkSlots {
				names[i] = slot.DeckName
			}
			stats.MostSharedCards = append(stats.MostSharedCards, SharedCard{
				Name:  card.CanonicalName,
				Count: card.DeckCount,
				Decks: names,
			})
		}
	}

	return stats
}
