package prism

import (
	"fmt"
	"strings"
)

// defaultColors are paint pen colours, in assignment order.
var defaultColors = []struct {
	hex  string
	name string
}{
	{"#ECC933", "Yellow"},
	{"#558CC1", "Blue"},
	{"#6B5597", "Purple"},
	{"#C73D2B", "Red"},
	{"#70AF63", "Green"},
	{"#EEEEEE", "White"},
	{"#7A5E68", "Brown"},
	{"#3C5890", "Navy"},
	{"#C76B61", "Salmon"},
	{"#A3C569", "Light-Green"},
	{"#D69F5D", "Gold"},
	{"#5A9FD7", "Light-Blue"},
	{"#F5F4CF", "Cream"},
	{"#AC638C", "Maroon"},
	{"#CFD964", "Lime"},
	{"#746BA9", "Grape"},
	{"#D388B2", "Pink"},
	{"#D4BC2E", "Dark Yellow"},
	{"#569899", "Teal"},
	{"#ECCAD7", "Pale-Pink"},
	{"#CCA427", "Straw"},
	{"#C2CCD2", "Silver"},
}

// DefaultPalette returns a fresh copy of the default stripe palette.
func DefaultPalette() []string {
	out := make([]string, len(defaultColors))
	for i, c := range defaultColors {
		out[i] = c.hex
	}
	return out
}

// ColorName returns the display name of a default palette colour.
// Any other value is returned unchanged.
func ColorName(color string) string {
	upper := strings.ToUpper(strings.TrimSpace(color))
	for _, c := range defaultColors {
		if c.hex == upper {
			return c.name
		}
	}
	return color
}

func colorKey(color string) string {
	return strings.ToUpper(strings.TrimSpace(color))
}

// AssignColors maps every deck ID to a stripe colour, walking decks in order.
//
// Decks that already carry a colour keep it, so repeated runs never repaint a deck.
// The others take the earliest palette entry no deck is using. When there are not
// enough free entries a *TooManyDecksError is returned; colours are never reused.
// Two decks arriving with the same colour are rejected with ErrColorInUse.
func AssignColors(decks []Deck, palette []string) (map[string]string, error) {
	assigned := make(map[string]string, len(decks))
	used := make(map[string]bool, len(decks))
	owner := make(map[string]string, len(decks))
	var pending []Deck

	for _, deck := range decks {
		key := colorKey(deck.AssignedColor)
		if key == "" {
			pending = append(pending, deck)
			continue
		}
		if first, ok := owner[key]; ok {
			return nil, fmt.Errorf("%w: %s is on both %q and %q", ErrColorInUse, ColorName(deck.AssignedColor), first, deck.Name)
		}
		owner[key] = deck.Name
		assigned[deck.ID] = deck.AssignedColor
		used[key] = true
	}

	if len(pending) == 0 {
		return assigned, nil
	}

	available := make([]string, 0, len(palette))
	for _, color := range palette {
		key := colorKey(color)
		if key == "" || used[key] {
			continue
		}
		used[key] = true
		available = append(available, color)
	}

	if len(pending) > len(available) {
		return nil, &TooManyDecksError{
			Decks:       len(decks),
			Pending:     len(pending),
			PaletteSize: len(palette),
			Available:   len(available),
		}
	}

	for i, deck := range pending {
		assigned[deck.ID] = available[i]
	}

	return assigned, nil
}

// AssignPositions maps every deck ID to its stripe position, walking decks in order.
//
// A deck keeps its StripePosition unless an earlier deck already holds it. The others
// take the lowest free positions, so the slot of a removed deck is reused first and
// no other deck moves.
func AssignPositions(decks []Deck) map[string]int {
	assigned := make(map[string]int, len(decks))
	taken := make(map[int]bool, len(decks))
	var pending []string

	for _, deck := range decks {
		if p := deck.StripePosition; p > 0 && !taken[p] {
			assigned[deck.ID] = p
			taken[p] = true
			continue
		}
		pending = append(pending, deck.ID)
	}

	next := 1
	for _, id := range pending {
		for taken[next] {
			next++
		}
		assigned[id] = next
		taken[next] = true
	}
	return assigned
}
