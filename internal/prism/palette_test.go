package prism

import (
	"errors"
	"fmt"
	"testing"
)

func TestAssignColors(t *testing.T) {
	palette := []string{"#111111", "#222222", "#333333"}

	tests := []struct {
		name  string
		decks []Deck
		want  map[string]string
	}{
		{
			name:  "fresh decks take palette in order",
			decks: []Deck{{ID: "a"}, {ID: "b"}},
			want:  map[string]string{"a": "#111111", "b": "#222222"},
		},
		{
			name:  "existing colors are kept and skipped",
			decks: []Deck{{ID: "a"}, {ID: "b", AssignedColor: "#111111"}, {ID: "c"}},
			want:  map[string]string{"a": "#222222", "b": "#111111", "c": "#333333"},
		},
		{
			name:  "color comparison ignores case",
			decks: []Deck{{ID: "a", AssignedColor: "#aaaaaa"}, {ID: "b"}},
			want:  map[string]string{"a": "#aaaaaa", "b": "#111111"},
		},
		{
			name:  "empty",
			decks: nil,
			want:  map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AssignColors(tt.decks, palette)
			if err != nil {
				t.Fatalf("AssignColors failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for id, color := range tt.want {
				if got[id] != color {
					t.Errorf("deck %s = %q, want %q", id, got[id], color)
				}
			}
		})
	}
}

func TestAssignColors_Idempotent(t *testing.T) {
	decks := []Deck{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	first, err := AssignColors(decks, DefaultPalette())
	if err != nil {
		t.Fatalf("AssignColors failed: %v", err)
	}

	for i := range decks {
		decks[i].AssignedColor = first[decks[i].ID]
	}
	second, err := AssignColors(decks, DefaultPalette())
	if err != nil {
		t.Fatalf("AssignColors failed: %v", err)
	}

	for id, color := range first {
		if second[id] != color {
			t.Errorf("deck %s changed from %q to %q", id, color, second[id])
		}
	}
}

func TestAssignColors_PaletteExhausted(t *testing.T) {
	palette := DefaultPalette()[:15]
	decks := make([]Deck, 16)
	for i := range decks {
		decks[i] = Deck{ID: fmt.Sprintf("d%d", i)}
	}

	_, err := AssignColors(decks, palette)
	var tooMany *TooManyDecksError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyDecksError, got %v", err)
	}
	if tooMany.Decks != 16 || tooMany.PaletteSize != 15 || tooMany.Available != 15 {
		t.Errorf("unexpected error fields %+v", tooMany)
	}
}

func TestAssignColors_TakenColorsReduceAvailable(t *testing.T) {
	palette := []string{"#111111", "#222222"}
	decks := []Deck{{ID: "a", AssignedColor: "#222222"}, {ID: "b"}, {ID: "c"}}

	_, err := AssignColors(decks, palette)
	var tooMany *TooManyDecksError
	if !errors.As(err, &tooMany) {
		t.Fatalf("expected TooManyDecksError, got %v", err)
	}
	if tooMany.Pending != 2 || tooMany.Available != 1 {
		t.Errorf("unexpected error fields %+v", tooMany)
	}
}

func TestAssignColors_DuplicateColor(t *testing.T) {
	decks := []Deck{
		{ID: "a", Name: "Atraxa", AssignedColor: "#ECC933"},
		{ID: "b", Name: "Krenko", AssignedColor: "#ecc933"},
	}

	_, err := AssignColors(decks, DefaultPalette())
	if !errors.Is(err, ErrColorInUse) {
		t.Fatalf("expected ErrColorInUse, got %v", err)
	}

	if _, err := Process(decks, DefaultOptions()); !errors.Is(err, ErrColorInUse) {
		t.Errorf("Process: expected ErrColorInUse, got %v", err)
	}
}

func TestAssignPositions(t *testing.T) {
	tests := []struct {
		name  string
		decks []Deck
		want  map[string]int
	}{
		{
			name:  "fresh decks take slots in order",
			decks: []Deck{{ID: "a"}, {ID: "b"}},
			want:  map[string]int{"a": 1, "b": 2},
		},
		{
			name:  "kept slots leave gaps for new decks",
			decks: []Deck{{ID: "a", StripePosition: 2}, {ID: "b", StripePosition: 4}, {ID: "c"}, {ID: "d"}},
			want:  map[string]int{"a": 2, "b": 4, "c": 1, "d": 3},
		},
		{
			name:  "first claimant keeps a contested slot",
			decks: []Deck{{ID: "a", StripePosition: 1}, {ID: "b", StripePosition: 1}},
			want:  map[string]int{"a": 1, "b": 2},
		},
		{
			name:  "empty",
			decks: nil,
			want:  map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignPositions(tt.decks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for id, p := range tt.want {
				if got[id] != p {
					t.Errorf("deck %s = %d, want %d", id, got[id], p)
				}
			}
		})
	}
}

func TestColorName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#ECC933", "Yellow"},
		{"#ecc933", "Yellow"},
		{"#C2CCD2", "Silver"},
		{"chartreuse", "chartreuse"},
	}
	for _, tt := range tests {
		if got := ColorName(tt.in); got != tt.want {
			t.Errorf("ColorName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if len(p) < 15 {
		t.Fatalf("palette has %d colors", len(p))
	}
	seen := make(map[string]bool)
	for _, c := range p {
		if seen[c] {
			t.Errorf("duplicate palette color %s", c)
		}
		seen[c] = true
	}

	p[0] = "#000000"
	if DefaultPalette()[0] == "#000000" {
		t.Error("DefaultPalette must return a copy")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, name, key string
		basic         bool
	}{
		{"  Sol   Ring ", "Sol Ring", "sol ring", false},
		{"Jace, the Mind Sculptor", "Jace, the Mind Sculptor", "jace, the mind sculptor", false},
		{"\tISLAND\n", "ISLAND", "island", true},
		{"Snow-Covered Island", "Snow-Covered Island", "snow-covered island", false},
		{"Wastes", "Wastes", "wastes", true},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.name {
				t.Errorf("NormalizeName = %q, want %q", got, tt.name)
			}
			if got := CardKey(tt.in); got != tt.key {
				t.Errorf("CardKey = %q, want %q", got, tt.key)
			}
			if got := IsBasicLand(tt.in); got != tt.basic {
				t.Errorf("IsBasicLand = %v, want %v", got, tt.basic)
			}
		})
	}
}
