package prism

import (
	"errors"
	"fmt"
)

// Errors returned by collection edits.
var (
	ErrDeckNotFound      = errors.New("deck not found")
	ErrDuplicateDeckName = errors.New("a deck with this name already exists")
	ErrDeckLimitReached  = errors.New("deck limit reached")
	ErrColorInUse        = errors.New("color already used by another deck")
	ErrInvalidBracket    = errors.New("bracket must be between 1 and 4")
	ErrEmptyDeckName     = errors.New("deck name is required")
)

// TooManyDecksError is returned when the decks of a collection cannot all receive a
// distinct colour, or when they exceed the configured deck limit.
type TooManyDecksError struct {
	Decks       int // decks in the collection
	Pending     int // decks that still needed a colour
	PaletteSize int
	Available   int // palette colours not already taken
	Limit       int // set when the deck limit was exceeded
}

func (e *TooManyDecksError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("too many decks: %d decks exceed the limit of %d", e.Decks, e.Limit)
	}
	return fmt.Sprintf("too many decks: %d of %d decks need a color but only %d of %d palette colors are unused",
		e.Pending, e.Decks, e.Available, e.PaletteSize)
}

// Reasons carried by InvalidOrderError.
const (
	OrderWrongLength = "wrong length"
	OrderOutOfRange  = "index out of range"
	OrderDuplicate   = "duplicate index"
	OrderUnknownDeck = "unknown deck"
)

// InvalidOrderError is returned when a manual deck order is not a permutation of the decks.
type InvalidOrderError struct {
	Reason string
	Index  int // offending index, or the order length for OrderWrongLength
	Length int // number of decks
}

func (e *InvalidOrderError) Error() string {
	switch e.Reason {
	case OrderWrongLength:
		return fmt.Sprintf("invalid deck order: got %d indices for %d decks", e.Index, e.Length)
	case OrderUnknownDeck:
		return fmt.Sprintf("invalid deck order: unknown deck at position %d", e.Index)
	default:
		return fmt.Sprintf("invalid deck order: %s %d (decks: %d)", e.Reason, e.Index, e.Length)
	}
}
