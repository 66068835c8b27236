package prism

import "sort"

// OrderDecksBySharing reorders decks so that neighbouring stripes share as many cards
// as possible, which keeps the painted stripes on a sleeve close together.
//
// It is a greedy nearest-neighbour chain: start with the deck that shares the most
// cards with all others, then keep appending the remaining deck sharing the most with
// the last placed one. Ties go to the deck that comes first in the input. The result
// is a new slice with StripePosition renumbered; colours stay with their decks.
func OrderDecksBySharing(decks []Deck) []Deck {
	n := len(decks)
	if n < 2 {
		return renumber(cloneDecks(decks))
	}

	matrix := OverlapMatrix(decks)

	start, bestTotal := 0, -1
	for i := 0; i < n; i++ {
		total := 0
		for j := 0; j < n; j++ {
			if i != j {
				total += matrix[i][j]
			}
		}
		if total > bestTotal {
			start, bestTotal = i, total
		}
	}

	placed := make([]bool, n)
	order := make([]int, 0, n)
	order = append(order, start)
	placed[start] = true

	last := start
	for len(order) < n {
		next := -1
		for j := 0; j < n; j++ {
			if placed[j] {
				continue
			}
			if next == -1 || matrix[last][j] > matrix[last][next] {
				next = j
			}
		}
		order = append(order, next)
		placed[next] = true
		last = next
	}

	out := make([]Deck, n)
	for i, idx := range order {
		out[i] = decks[idx].Clone()
	}
	return renumber(out)
}

// ReorderDecks applies a manual order: order[i] is the index in decks of the deck
// that moves to position i. The order must be a permutation of [0, len(decks)).
func ReorderDecks(decks []Deck, order []int) ([]Deck, error) {
	if len(order) != len(decks) {
		return nil, &InvalidOrderError{Reason: OrderWrongLength, Index: len(order), Length: len(decks)}
	}

	seen := make([]bool, len(decks))
	for _, idx := range order {
		if idx < 0 || idx >= len(decks) {
			return nil, &InvalidOrderError{Reason: OrderOutOfRange, Index: idx, Length: len(decks)}
		}
		if seen[idx] {
			return nil, &InvalidOrderError{Reason: OrderDuplicate, Index: idx, Length: len(decks)}
		}
		seen[idx] = true
	}

	out := make([]Deck, len(decks))
	for i, idx := range order {
		out[i] = decks[idx].Clone()
	}
	return renumber(out), nil
}

// ReorderDecksByID applies a manual order given as deck IDs.
func ReorderDecksByID(decks []Deck, ids []string) ([]Deck, error) {
	if len(ids) != len(decks) {
		return nil, &InvalidOrderError{Reason: OrderWrongLength, Index: len(ids), Length: len(decks)}
	}

	position := make(map[string]int, len(decks))
	for i, d := range decks {
		position[d.ID] = i
	}

	order := make([]int, len(ids))
	for i, id := range ids {
		idx, ok := position[id]
		if !ok {
			return nil, &InvalidOrderError{Reason: OrderUnknownDeck, Index: i, Length: len(decks)}
		}
		order[i] = idx
	}

	return ReorderDecks(decks, order)
}

// MoveDeck swaps the deck at index with its neighbour offset places away,
// e.g. -1 to move a stripe up one slot.
func MoveDeck(decks []Deck, index, offset int) ([]Deck, error) {
	if index < 0 || index >= len(decks) {
		return nil, &InvalidOrderError{Reason: OrderOutOfRange, Index: index, Length: len(decks)}
	}
	target := index + offset
	if target < 0 || target >= len(decks) {
		return nil, &InvalidOrderError{Reason: OrderOutOfRange, Index: target, Length: len(decks)}
	}

	order := make([]int, len(decks))
	for i := range order {
		order[i] = i
	}
	order[index], order[target] = order[target], order[index]

	return ReorderDecks(decks, order)
}

// sortByPosition puts decks in stripe order.
func sortByPosition(decks []Deck) {
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].StripePosition < decks[j].StripePosition
	})
}

func renumber(decks []Deck) []Deck {
	for i := range decks {
		decks[i].StripePosition = i + 1
	}
	return decks
}
