// Package benchmarks measures the processing pipeline on a full Commander pod.
//
// To run:
//
//	go test -bench=. -benchmem ./benchmarks/...
//
// To compare two revisions:
//
//	go install golang.org/x/perf/cmd/benchstat@latest
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > old.txt
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > new.txt
//	benchstat old.txt new.txt
package benchmarks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/codwats/prism/internal/deckimport"
	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage"
)

// sharedStaples are cards every generated deck plays.
var sharedStaples = []string{
	"Sol Ring", "Arcane Signet", "Command Tower", "Swiftfoot Boots", "Lightning Greaves",
	"Swords to Plowshares", "Counterspell", "Cultivate", "Beast Within", "Chaos Warp",
}

// generateDecks builds n decks of 100 cards: the staples, a block of cards shared
// with the neighbouring deck, singletons and basic lands.
func generateDecks(n int) []prism.Deck {
	decks := make([]prism.Deck, n)
	for i := range decks {
		cards := make([]prism.Card, 0, 70)
		for _, name := range sharedStaples {
			cards = append(cards, prism.Card{Name: name, Quantity: 1})
		}
		for j := 0; j < 20; j++ {
			cards = append(cards, prism.Card{Name: fmt.Sprintf("Pair %d Card %d", i/2, j), Quantity: 1})
		}
		for j := 0; j < 35; j++ {
			cards = append(cards, prism.Card{Name: fmt.Sprintf("Deck %d Card %d", i, j), Quantity: 1})
		}
		cards = append(cards,
			prism.Card{Name: "Island", Quantity: 12},
			prism.Card{Name: "Forest", Quantity: 10 + i%5},
		)

		decks[i] = prism.Deck{
			ID:      fmt.Sprintf("deck-%02d", i),
			Name:    fmt.Sprintf("Deck %d", i),
			Bracket: 1 + i%4,
			Cards:   cards,
		}
	}
	return decks
}

func decklistText(d prism.Deck) string {
	var buf bytes.Buffer
	buf.WriteString("Commander\n1 Generated Commander\n\nDeck\n")
	for _, c := range d.Cards {
		fmt.Fprintf(&buf, "%d %s\n", c.Quantity, c.Name)
	}
	return buf.String()
}

func BenchmarkParseDecklist(b *testing.B) {
	text := decklistText(generateDecks(1)[0])
	parser := deckimport.NewParser()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if result := parser.Parse(text); !result.OK() {
			b.Fatal("decklist did not parse")
		}
	}
}

func BenchmarkProcess(b *testing.B) {
	for _, n := range []int{4, 10, 15} {
		decks := generateDecks(n)
		b.Run(fmt.Sprintf("decks=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := prism.Process(decks, prism.DefaultOptions()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCalculateDelta(b *testing.B) {
	decks := generateDecks(15)
	old, err := prism.Process(decks, prism.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	// Swapping the first and last decks moves both of their stripes.
	reordered, err := prism.MoveDeck(old.Decks, len(old.Decks)-1, -(len(old.Decks) - 1))
	if err != nil {
		b.Fatal(err)
	}
	current, err := prism.Process(reordered, prism.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prism.CalculateDelta(old, current)
	}
}

func BenchmarkOrderDecksBySharing(b *testing.B) {
	decks := generateDecks(15)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		prism.OrderDecksBySharing(decks)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	data, err := prism.Process(generateDecks(15), prism.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := storage.Fingerprint(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnapshotJSON(b *testing.B) {
	decks := generateDecks(15)
	data, err := prism.Process(decks, prism.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	c := prism.NewCollection("Benchmark")
	c.SetDecks(data.Decks)
	snap := export.BuildSnapshot(c, data, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	b.Run("Write", func(b *testing.B) {
		b.ReportAllocs()
		var buf bytes.Buffer
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := export.WriteSnapshot(&buf, snap); err != nil {
				b.Fatal(err)
			}
		}
		b.SetBytes(int64(buf.Len()))
	})

	encoded, err := json.Marshal(snap)
	if err != nil {
		b.Fatal(err)
	}
	b.Run("Load", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(encoded)))
		for i := 0; i < b.N; i++ {
			if _, err := export.LoadSnapshot(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
