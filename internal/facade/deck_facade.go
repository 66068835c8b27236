package facade

import (
	"context"
	"fmt"
	"strings"

	"github.com/codwats/prism/internal/deckimport"
	"github.com/codwats/prism/internal/moxfield"
	"github.com/codwats/prism/internal/prism"
)

// AddDeckRequest describes a deck to add. Cards come from MoxfieldURL, then
// DeckList, then Cards, whichever is set first. Name and Commander fall back to
// what the source provides.
type AddDeckRequest struct {
	Name        string       `json:"name"`
	Commander   string       `json:"commander"`
	Bracket     int          `json:"bracket"`
	Color       string       `json:"color"`
	DeckList    string       `json:"deckList"`
	MoxfieldURL string       `json:"moxfieldUrl"`
	Cards       []prism.Card `json:"cards"`
}

// DeckResult is the outcome of a deck edit.
type DeckResult struct {
	Collection *prism.Collection         `json:"collection"`
	Deck       prism.Deck                `json:"deck"`
	Warnings   []deckimport.ParseWarning `json:"warnings"`
	Skipped    []deckimport.ParseError   `json:"skipped"`
}

// deckSource is the card list of a deck with the metadata its source provides.
type deckSource struct {
	name      string
	commander string
	cards     []prism.Card
	warnings  []deckimport.ParseWarning
	skipped   []deckimport.ParseError
}

// ParseDeck parses decklist text without storing anything.
func (f *CollectionFacade) ParseDeck(text string) *deckimport.ParseResult {
	return f.parser().Parse(text)
}

func (f *CollectionFacade) parser() *deckimport.Parser {
	if f.services.Parser == nil {
		f.services.Parser = deckimport.NewParser()
	}
	return f.services.Parser
}

// resolveSource loads the cards of a request from Moxfield, decklist text or the
// request itself.
func (f *CollectionFacade) resolveSource(ctx context.Context, req AddDeckRequest) (*deckSource, error) {
	switch {
	case strings.TrimSpace(req.MoxfieldURL) != "":
		if f.services.Moxfield == nil {
			return nil, &AppError{Message: "Moxfield import is not available"}
		}
		id, err := moxfield.ExtractID(req.MoxfieldURL)
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		deck, err := f.services.Moxfield.FetchDeck(ctx, id)
		if err != nil {
			return nil, &AppError{Message: fmt.Sprintf("Failed to fetch Moxfield deck %s", id), Err: err}
		}
		src := &deckSource{name: deck.Name, cards: deck.Cards()}
		if name := deck.CommanderName(); name != moxfield.UnknownCommander {
			src.commander = name
		}
		return src, nil

	case strings.TrimSpace(req.DeckList) != "":
		result := f.parser().Parse(req.DeckList)
		if !result.OK() {
			return nil, &ValidationError{Message: "decklist contains no readable cards", Problems: result.Errors}
		}
		return &deckSource{
			commander: result.Commander,
			cards:     result.Cards,
			warnings:  result.Warnings,
			skipped:   result.Errors,
		}, nil

	default:
		return &deckSource{cards: req.Cards}, nil
	}
}

// AddDeck appends a deck to a collection. A deck without a colour gets the first
// unused palette colour.
func (f *CollectionFacade) AddDeck(ctx context.Context, ref string, req AddDeckRequest) (*DeckResult, error) {
	src, err := f.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(src.cards) == 0 {
		return nil, &ValidationError{Message: "deck has no cards"}
	}

	in := prism.DeckInput{
		Name:      firstNonEmpty(req.Name, src.name),
		Commander: firstNonEmpty(req.Commander, src.commander),
		Bracket:   req.Bracket,
		Color:     req.Color,
		Cards:     src.cards,
	}

	cfg := f.services.config()
	var deck prism.Deck
	c, err := f.update(ctx, ref, "deck.added", func(c *prism.Collection) error {
		if strings.TrimSpace(in.Color) == "" {
			in.Color = c.NextColor(cfg.Prism.Palette)
			if in.Color == "" {
				palette := len(cfg.Prism.Palette)
				if palette == 0 {
					palette = len(prism.DefaultPalette())
				}
				return &prism.TooManyDecksError{
					Decks:       len(c.Decks) + 1,
					Pending:     1,
					PaletteSize: palette,
				}
			}
		}

		deck = prism.NewDeck(in)
		return c.AddDeck(deck, cfg.Prism.MaxDecks)
	})
	if err != nil {
		return nil, err
	}

	f.services.Logger.Info().
		Str("collection", c.ID).
		Str("deck", deck.Name).
		Int("cards", deck.CardCount()).
		Msg("Added deck")

	return &DeckResult{
		Collection: c,
		Deck:       deck,
		Warnings:   deckWarnings(src.warnings, deck.Cards),
		Skipped:    src.skipped,
	}, nil
}

// UpdateDeck replaces a deck's details. When the request carries no card source
// the current card list is kept.
func (f *CollectionFacade) UpdateDeck(ctx context.Context, ref, deckRef string, req AddDeckRequest) (*DeckResult, error) {
	src, err := f.resolveSource(ctx, req)
	if err != nil {
		return nil, err
	}

	var updated *prism.Deck
	c, err := f.update(ctx, ref, "deck.updated", func(c *prism.Collection) error {
		existing, ok := c.FindDeck(deckRef)
		if !ok {
			return fmt.Errorf("%w: %s", prism.ErrDeckNotFound, deckRef)
		}

		in := prism.DeckInput{
			Name:      firstNonEmpty(req.Name, src.name, existing.Name),
			Commander: firstNonEmpty(req.Commander, src.commander, existing.Commander),
			Bracket:   req.Bracket,
			Color:     req.Color,
			Cards:     src.cards,
		}
		if in.Bracket == 0 {
			in.Bracket = existing.Bracket
		}
		if len(in.Cards) == 0 {
			in.Cards = nil
		}

		var err error
		updated, err = c.UpdateDeck(existing.ID, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.services.Logger.Info().Str("collection", c.ID).Str("deck", updated.Name).Msg("Updated deck")
	return &DeckResult{
		Collection: c,
		Deck:       *updated,
		Warnings:   deckWarnings(src.warnings, updated.Cards),
		Skipped:    src.skipped,
	}, nil
}

// RemoveDeck deletes a deck from a collection. Later decks move up one stripe slot.
func (f *CollectionFacade) RemoveDeck(ctx context.Context, ref, deckRef string) (*DeckResult, error) {
	var removed *prism.Deck
	c, err := f.update(ctx, ref, "deck.removed", func(c *prism.Collection) error {
		existing, ok := c.FindDeck(deckRef)
		if !ok {
			return fmt.Errorf("%w: %s", prism.ErrDeckNotFound, deckRef)
		}
		var err error
		removed, err = c.RemoveDeck(existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	f.services.Logger.Info().Str("collection", c.ID).Str("deck", removed.Name).Msg("Removed deck")
	return &DeckResult{Collection: c, Deck: *removed}, nil
}

func deckWarnings(warnings []deckimport.ParseWarning, cards []prism.Card) []deckimport.ParseWarning {
	out := append([]deckimport.ParseWarning{}, warnings...)
	if note := deckimport.ValidateDeckSize(cards); note != "" {
		out = append(out, deckimport.ParseWarning{Message: note})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
