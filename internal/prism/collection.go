package prism

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinBracket and MaxBracket bound the Commander power bracket of a deck.
const (
	MinBracket = 1
	MaxBracket = 4
)

// Collection is a named set of decks that share one physical card pool. Decks are
// kept in stripe position order.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Decks       []Deck    `json:"decks"`
	MarkedCards []string  `json:"markedCards"` // normalized keys, sorted
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCollection creates an empty collection. An empty name becomes "PRISM <date>".
func NewCollection(name string) *Collection {
	now := time.Now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "PRISM " + now.Format("2006-01-02")
	}
	return &Collection{
		ID:          uuid.NewString(),
		Name:        name,
		Decks:       []Deck{},
		MarkedCards: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DeckInput is the user supplied part of a deck.
type DeckInput struct {
	Name      string `json:"name"`
	Commander string `json:"commander"`
	Bracket   int    `json:"bracket"`
	Color     string `json:"color"`
	Cards     []Card `json:"cards"`
}

// NewDeck builds a deck with a fresh ID from in. It does not validate.
func NewDeck(in DeckInput) Deck {
	now := time.Now().UTC()
	return Deck{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Commander:     strings.TrimSpace(in.Commander),
		Bracket:       in.Bracket,
		Cards:         normalizeCards(in.Cards),
		AssignedColor: strings.TrimSpace(in.Color),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func normalizeCards(cards []Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		name := NormalizeName(c.Name)
		if name == "" {
			continue
		}
		out = append(out, Card{Name: name, Quantity: c.Quantity})
	}
	return out
}

func validateDeck(d Deck) error {
	if d.Name == "" {
		return ErrEmptyDeckName
	}
	if d.Bracket < MinBracket || d.Bracket > MaxBracket {
		return ErrInvalidBracket
	}
	return nil
}

// AddDeck adds d to the collection. A deck without a free stripe position of its
// own takes the lowest unused one. limit caps the deck count; 0 disables it.
func (c *Collection) AddDeck(d Deck, limit int) error {
	if err := validateDeck(d); err != nil {
		return err
	}
	if limit > 0 && len(c.Decks) >= limit {
		return fmt.Errorf("%w: %d decks", ErrDeckLimitReached, limit)
	}
	if c.hasDeckName(d.Name, "") {
		return fmt.Errorf("%w: %s", ErrDuplicateDeckName, d.Name)
	}
	if d.AssignedColor != "" && c.IsColorUsed(d.AssignedColor, "") {
		return fmt.Errorf("%w: %s", ErrColorInUse, ColorName(d.AssignedColor))
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.StripePosition <= 0 || c.isPositionUsed(d.StripePosition) {
		d.StripePosition = c.NextPosition()
	}

	c.Decks = append(c.Decks, d.Clone())
	sortByPosition(c.Decks)
	c.Touch()
	return nil
}

// UpdateDeck replaces the editable fields of a deck. An empty colour keeps the
// current one. The deck keeps its position.
func (c *Collection) UpdateDeck(id string, in DeckInput) (*Deck, error) {
	idx := c.deckIndex(id)
	if idx < 0 {
		return nil, ErrDeckNotFound
	}

	updated := c.Decks[idx].Clone()
	updated.Name = strings.TrimSpace(in.Name)
	updated.Commander = strings.TrimSpace(in.Commander)
	updated.Bracket = in.Bracket
	if in.Cards != nil {
		updated.Cards = normalizeCards(in.Cards)
	}
	if color := strings.TrimSpace(in.Color); color != "" {
		updated.AssignedColor = color
	}

	if err := validateDeck(updated); err != nil {
		return nil, err
	}
	if c.hasDeckName(updated.Name, id) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateDeckName, updated.Name)
	}
	if updated.AssignedColor != "" && c.IsColorUsed(updated.AssignedColor, id) {
		return nil, fmt.Errorf("%w: %s", ErrColorInUse, ColorName(updated.AssignedColor))
	}

	updated.UpdatedAt = time.Now().UTC()
	c.Decks[idx] = updated
	c.Touch()

	out := updated.Clone()
	return &out, nil
}

// RemoveDeck deletes a deck. Every other deck keeps its slot; the freed one goes to
// the next deck added.
func (c *Collection) RemoveDeck(id string) (*Deck, error) {
	idx := c.deckIndex(id)
	if idx < 0 {
		return nil, ErrDeckNotFound
	}
	removed := c.Decks[idx]
	c.Decks = append(c.Decks[:idx:idx], c.Decks[idx+1:]...)
	c.Touch()
	return &removed, nil
}

// FindDeck looks a deck up by ID, then by case-insensitive name.
func (c *Collection) FindDeck(ref string) (*Deck, bool) {
	if idx := c.deckIndex(ref); idx >= 0 {
		return &c.Decks[idx], true
	}
	for i := range c.Decks {
		if strings.EqualFold(c.Decks[i].Name, strings.TrimSpace(ref)) {
			return &c.Decks[i], true
		}
	}
	return nil, false
}

// SetDecks replaces the deck list, e.g. after a reorder.
func (c *Collection) SetDecks(decks []Deck) {
	c.Decks = cloneDecks(decks)
	c.Touch()
}

// NextPosition returns the lowest stripe position no deck holds.
func (c *Collection) NextPosition() int {
	next := 1
	for c.isPositionUsed(next) {
		next++
	}
	return next
}

func (c *Collection) isPositionUsed(p int) bool {
	for _, d := range c.Decks {
		if d.StripePosition == p {
			return true
		}
	}
	return false
}

// NextColor returns the first palette colour no deck is using, or "" when
// the palette is exhausted.
func (c *Collection) NextColor(palette []string) string {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	for _, color := range palette {
		if !c.IsColorUsed(color, "") {
			return color
		}
	}
	return ""
}

// IsColorUsed reports whether any deck other than excludeID has color.
func (c *Collection) IsColorUsed(color, excludeID string) bool {
	key := colorKey(color)
	if key == "" {
		return false
	}
	for _, d := range c.Decks {
		if d.ID != excludeID && colorKey(d.AssignedColor) == key {
			return true
		}
	}
	return false
}

// SetMarked records whether the physical copy of a card has been painted.
func (c *Collection) SetMarked(name string, marked bool) {
	key := CardKey(name)
	if key == "" {
		return
	}

	i := sort.SearchStrings(c.MarkedCards, key)
	present := i < len(c.MarkedCards) && c.MarkedCards[i] == key

	switch {
	case marked && !present:
		c.MarkedCards = append(c.MarkedCards, "")
		copy(c.MarkedCards[i+1:], c.MarkedCards[i:])
		c.MarkedCards[i] = key
	case !marked && present:
		c.MarkedCards = append(c.MarkedCards[:i], c.MarkedCards[i+1:]...)
	default:
		return
	}
	c.Touch()
}

// IsMarked reports whether a card has been painted.
func (c *Collection) IsMarked(name string) bool {
	key := CardKey(name)
	i := sort.SearchStrings(c.MarkedCards, key)
	return i < len(c.MarkedCards) && c.MarkedCards[i] == key
}

// ClearMarksFor unmarks every card touched by delta, since its stripes changed.
// It returns the number of marks cleared.
func (c *Collection) ClearMarksFor(delta *Delta) int {
	if delta == nil {
		return 0
	}
	cleared := 0
	for _, change := range delta.Changes {
		if c.IsMarked(change.NormalizedKey) {
			c.SetMarked(change.NormalizedKey, false)
			cleared++
		}
	}
	return cleared
}

// Touch bumps UpdatedAt.
func (c *Collection) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

func (c *Collection) deckIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, d := range c.Decks {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) hasDeckName(name, excludeID string) bool {
	for _, d := range c.Decks {
		if d.ID != excludeID && strings.EqualFold(strings.TrimSpace(d.Name), name) {
			return true
		}
	}
	return false
}
