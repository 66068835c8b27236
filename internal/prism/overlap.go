package prism

// DeckOverlap is the number of unique cards two decks have in common.
type DeckOverlap struct {
	DeckA   string `json:"deckA"`
	DeckAID string `json:"deckAId"`
	DeckB   string `json:"deckB"`
	DeckBID string `json:"deckBId"`
	Shared  int    `json:"shared"`
}

func deckKeySets(decks []Deck) []map[string]struct{} {
	sets := make([]map[string]struct{}, len(decks))
	for i, deck := range decks {
		set := make(map[string]struct{}, len(deck.Cards))
		for _, card := range deck.Cards {
			if key := CardKey(card.Name); key != "" {
				set[key] = struct{}{}
			}
		}
		sets[i] = set
	}
	return sets
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for key := range a {
		if _, ok := b[key]; ok {
			n++
		}
	}
	return n
}

// OverlapMatrix returns a len(decks) square matrix of shared card counts.
// The diagonal holds each deck's number of unique cards.
func OverlapMatrix(decks []Deck) [][]int {
	sets := deckKeySets(decks)
	matrix := make([][]int, len(decks))
	for i := range matrix {
		matrix[i] = make([]int, len(decks))
	}
	for i := range sets {
		matrix[i][i] = len(sets[i])
		for j := i + 1; j < len(sets); j++ {
			n := intersectionSize(sets[i], sets[j])
			matrix[i][j] = n
			matrix[j][i] = n
		}
	}
	return matrix
}

// PairwiseOverlap lists every unordered pair of decks, in deck order, with the
// number of cards both contain.
func PairwiseOverlap(decks []Deck) []DeckOverlap {
	matrix := OverlapMatrix(decks)
	pairs := make([]DeckOverlap, 0, len(decks)*(len(decks)-1)/2+1)
	for i := range decks {
		for j := i + 1; j < len(decks); j++ {
			pairs = append(pairs, DeckOverlap{
				DeckA:   decks[i].Name,
				DeckAID: decks[i].ID,
				DeckB:   decks[j].Name,
				DeckBID: decks[j].ID,
				Shared:  matrix[i][j],
			})
		}
	}
	return pairs
}
