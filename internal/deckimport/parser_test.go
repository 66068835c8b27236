package deckimport

import (
	"strings"
	"testing"

	"github.com/codwats/prism/internal/prism"
)

func TestParse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name          string
		input         string
		wantCards     int
		wantErrors    int
		wantWarnings  int
		wantCommander string
	}{
		{
			name: "plain list",
			input: `1 Sol Ring
1 Arcane Signet
10 Island`,
			wantCards:    3,
			wantWarnings: 0,
		},
		{
			name: "x quantities",
			input: `1x Sol Ring
Arcane Signet x1
7x Forest`,
			wantCards:    3,
			wantWarnings: 1,
		},
		{
			name: "arena suffixes",
			input: `Deck
1 Lightning Bolt (M21) 123
1 Counterspell (MH2) 267 *F*
9 Mountain (ZNR) 280a`,
			wantCards:    3,
			wantWarnings: 0,
		},
		{
			name: "sections",
			input: `Commander
1 Atraxa, Praetors' Voice

Deck
1 Sol Ring
9 Plains

Sideboard
1 Swords to Plowshares

Maybeboard
1 Path to Exile`,
			wantCards:     3,
			wantCommander: "Atraxa, Praetors' Voice",
		},
		{
			name: "comments and errors",
			input: `// Main
# generated by hand
1 Sol Ring
Sol Ring without count
0 Mana Crypt
9 Island`,
			wantCards:  2,
			wantErrors: 2,
		},
		{
			name: "duplicates",
			input: `1 Sol Ring
1 sol ring
5 Island
5 Island`,
			wantCards:    2,
			wantWarnings: 1,
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.input)

			if len(result.Cards) != tt.wantCards {
				t.Errorf("cards = %d, want %d: %v", len(result.Cards), tt.wantCards, result.Cards)
			}
			if len(result.Errors) != tt.wantErrors {
				t.Errorf("errors = %d, want %d: %v", len(result.Errors), tt.wantErrors, result.Errors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %d, want %d: %v", len(result.Warnings), tt.wantWarnings, result.Warnings)
			}
			if result.Commander != tt.wantCommander {
				t.Errorf("commander = %q, want %q", result.Commander, tt.wantCommander)
			}
			if result.OK() != (tt.wantCards > 0) {
				t.Errorf("OK() = %v", result.OK())
			}
		})
	}
}

func TestParse_CardNames(t *testing.T) {
	parser := NewParser()

	result := parser.Parse(`4 Lightning Bolt (M21) 123
1   Jace,   the Mind Sculptor
1 Fire // Ice
Sensei's Divining Top x1
10 Island`)

	want := []prism.Card{
		{Name: "Lightning Bolt", Quantity: 4},
		{Name: "Jace, the Mind Sculptor", Quantity: 1},
		{Name: "Fire // Ice", Quantity: 1},
		{Name: "Sensei's Divining Top", Quantity: 1},
		{Name: "Island", Quantity: 10},
	}
	if len(result.Cards) != len(want) {
		t.Fatalf("got %v, want %v", result.Cards, want)
	}
	for i, card := range want {
		if result.Cards[i] != card {
			t.Errorf("card %d = %+v, want %+v", i, result.Cards[i], card)
		}
	}
}

func TestParse_BasicLandsMerge(t *testing.T) {
	result := NewParser().Parse("5 Island\n1 Sol Ring\n7 island\n")

	if len(result.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %v", result.Cards)
	}
	if result.Cards[0].Quantity != 12 {
		t.Errorf("island quantity = %d, want 12", result.Cards[0].Quantity)
	}
}

func TestParse_ErrorDetails(t *testing.T) {
	result := NewParser().Parse("1 Sol Ring\n\nnot a card\n")

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Line != 3 || e.Text != "not a card" {
		t.Errorf("unexpected error %+v", e)
	}
	if !strings.Contains(e.Error(), "line 3") {
		t.Errorf("unexpected message %q", e.Error())
	}
}

func TestParse_SideboardPrefix(t *testing.T) {
	result := NewParser().Parse("1 Sol Ring\nSB: 1 Duress\nSB:\n1 Negate\n")

	if len(result.Cards) != 1 || result.Cards[0].Name != "Sol Ring" {
		t.Errorf("unexpected cards %v", result.Cards)
	}
}

func TestParse_CardStartingWithHeaderWord(t *testing.T) {
	result := NewParser().Parse("1 Commander's Sphere\nCommander's Plate x1\n")

	if len(result.Cards) != 2 {
		t.Errorf("unexpected cards %v", result.Cards)
	}
}

func TestValidateDeckSize(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{0, "Deck is empty (0 cards)"},
		{40, "Deck only has 40 cards (Commander decks should have 100)"},
		{99, "Note: Deck has 99 cards (Commander format expects 100)"},
		{100, ""},
		{200, "Deck has 200 cards (Commander decks should have 100)"},
	}
	for _, tt := range tests {
		var cards []prism.Card
		if tt.total > 0 {
			cards = []prism.Card{{Name: "Island", Quantity: tt.total}}
		}
		if got := ValidateDeckSize(cards); got != tt.want {
			t.Errorf("ValidateDeckSize(%d) = %q, want %q", tt.total, got, tt.want)
		}
	}
}
