package prism

import (
	"errors"
	"testing"
)

func reorderFixture() []Deck {
	return []Deck{
		deck("a", "A", Card{"Sol Ring", 1}),
		deck("b", "B", Card{"Sol Ring", 1}, Card{"Ponder", 1}, Card{"Preordain", 1}),
		deck("c", "C", Card{"Ponder", 1}, Card{"Preordain", 1}, Card{"Opt", 1}),
		deck("d", "D", Card{"Cultivate", 1}),
	}
}

func deckIDs(decks []Deck) []string {
	ids := make([]string, len(decks))
	for i, d := range decks {
		ids[i] = d.ID
	}
	return ids
}

func equalIDs(got []Deck, want ...string) bool {
	ids := deckIDs(got)
	if len(ids) != len(want) {
		return false
	}
	for i := range ids {
		if ids[i] != want[i] {
			return false
		}
	}
	return true
}

func TestOrderDecksBySharing(t *testing.T) {
	decks := reorderFixture()
	ordered := OrderDecksBySharing(decks)

	if !equalIDs(ordered, "b", "c", "a", "d") {
		t.Fatalf("unexpected order %v", deckIDs(ordered))
	}
	for i, d := range ordered {
		if d.StripePosition != i+1 {
			t.Errorf("deck %s position = %d, want %d", d.ID, d.StripePosition, i+1)
		}
	}
	if !equalIDs(decks, "a", "b", "c", "d") {
		t.Error("input must not be modified")
	}
}

func TestOrderDecksBySharing_TiesKeepInputOrder(t *testing.T) {
	decks := []Deck{deck("x", "X"), deck("y", "Y"), deck("z", "Z")}
	if ordered := OrderDecksBySharing(decks); !equalIDs(ordered, "x", "y", "z") {
		t.Errorf("unexpected order %v", deckIDs(ordered))
	}

	if ordered := OrderDecksBySharing(nil); len(ordered) != 0 {
		t.Errorf("expected empty result, got %v", ordered)
	}
}

func TestReorderDecks(t *testing.T) {
	decks := reorderFixture()[:3]

	tests := []struct {
		name   string
		order  []int
		want   []string
		reason string
	}{
		{name: "identity", order: []int{0, 1, 2}, want: []string{"a", "b", "c"}},
		{name: "reverse", order: []int{2, 1, 0}, want: []string{"c", "b", "a"}},
		{name: "duplicate index", order: []int{0, 0, 1}, reason: OrderDuplicate},
		{name: "too short", order: []int{0, 1}, reason: OrderWrongLength},
		{name: "out of range", order: []int{0, 1, 3}, reason: OrderOutOfRange},
		{name: "negative", order: []int{-1, 1, 2}, reason: OrderOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReorderDecks(decks, tt.order)
			if tt.reason != "" {
				var invalid *InvalidOrderError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidOrderError, got %v", err)
				}
				if invalid.Reason != tt.reason {
					t.Errorf("reason = %q, want %q", invalid.Reason, tt.reason)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReorderDecks failed: %v", err)
			}
			if !equalIDs(got, tt.want...) {
				t.Errorf("got %v, want %v", deckIDs(got), tt.want)
			}
		})
	}
}

func TestReorderDecksByID(t *testing.T) {
	decks := reorderFixture()

	got, err := ReorderDecksByID(decks, []string{"d", "c", "b", "a"})
	if err != nil {
		t.Fatalf("ReorderDecksByID failed: %v", err)
	}
	if !equalIDs(got, "d", "c", "b", "a") {
		t.Errorf("unexpected order %v", deckIDs(got))
	}

	_, err = ReorderDecksByID(decks, []string{"d", "c", "b", "nope"})
	var invalid *InvalidOrderError
	if !errors.As(err, &invalid) || invalid.Reason != OrderUnknownDeck {
		t.Errorf("expected unknown deck error, got %v", err)
	}

	_, err = ReorderDecksByID(decks, []string{"a", "a", "b", "c"})
	if !errors.As(err, &invalid) || invalid.Reason != OrderDuplicate {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestMoveDeck(t *testing.T) {
	decks := reorderFixture()

	got, err := MoveDeck(decks, 2, -1)
	if err != nil {
		t.Fatalf("MoveDeck failed: %v", err)
	}
	if !equalIDs(got, "a", "c", "b", "d") {
		t.Errorf("unexpected order %v", deckIDs(got))
	}

	if _, err := MoveDeck(decks, 0, -1); err == nil {
		t.Error("expected error moving first deck up")
	}
	if _, err := MoveDeck(decks, 4, 1); err == nil {
		t.Error("expected error for out of range index")
	}
}
