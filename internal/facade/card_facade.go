package facade

import (
	"context"
	"strings"

	"github.com/codwats/prism/internal/scryfall"
)

// ErrLookupDisabled is returned when card lookups are turned off in the config.
var ErrLookupDisabled = &AppError{Message: "Card lookup is disabled"}

// CardFacade handles card reference lookups.
type CardFacade struct {
	services *Services
}

// NewCardFacade creates a new CardFacade with the given services.
func NewCardFacade(services *Services) *CardFacade {
	return &CardFacade{services: services}
}

// LookupCard resolves a card name against Scryfall, exact first and fuzzy second.
func (f *CardFacade) LookupCard(ctx context.Context, name string) (*scryfall.Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "card name is required"}
	}
	if f.services.Scryfall == nil {
		return nil, ErrLookupDisabled
	}

	card, err := f.services.Scryfall.NamedCard(ctx, name)
	if err != nil {
		if scryfall.IsNotFound(err) {
			return nil, err
		}
		return nil, &AppError{Message: "Failed to look up card " + name, Err: err}
	}
	return card, nil
}
