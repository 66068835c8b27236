// Package facade implements the PRISM application operations shared by the CLI and
// the REST API: collection management, deck import, processing and export.
package facade

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/config"
	"github.com/codwats/prism/internal/deckimport"
	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/moxfield"
	"github.com/codwats/prism/internal/scryfall"
	"github.com/codwats/prism/internal/storage"
)

// DeckFetcher downloads decks from Moxfield. It allows mocking in tests.
type DeckFetcher interface {
	FetchDeck(ctx context.Context, id string) (*moxfield.Deck, error)
}

// Services contains all shared services needed by facades.
type Services struct {
	// Storage service for database operations
	Storage *storage.Service

	// Config supplies the palette, deck limit and export settings.
	Config *config.Config

	// Deck sources
	Parser   *deckimport.Parser
	Moxfield DeckFetcher

	// Scryfall is nil when card lookups are disabled.
	Scryfall scryfall.Lookup

	// Events receives collection changes; nil disables them.
	Events *events.EventDispatcher

	Logger zerolog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewServices wires the configured Moxfield and Scryfall clients around store.
// Card lookups are served through the card cache and are left nil when disabled.
func NewServices(cfg *config.Config, store *storage.Service, logger zerolog.Logger) *Services {
	s := &Services{
		Storage: store,
		Config:  cfg,
		Parser:  deckimport.NewParser(),
		Moxfield: moxfield.NewClient(
			moxfield.WithRateLimit(cfg.MoxfieldRateLimit()),
			moxfield.WithLogger(logger.With().Str("client", "moxfield").Logger()),
		),
		Logger: logger,
	}
	if cfg.Scryfall.Enabled {
		scryfallLogger := logger.With().Str("client", "scryfall").Logger()
		api := scryfall.NewClient(
			scryfall.WithRateLimit(cfg.ScryfallRateLimit()),
			scryfall.WithLogger(scryfallLogger),
		)
		cached := scryfall.NewCachedClient(api, store.CardCache(), cfg.CacheTTL(), scryfallLogger)
		if n, err := cached.Evict(context.Background()); err != nil {
			scryfallLogger.Warn().Err(err).Msg("Failed to evict stale card cache entries")
		} else if n > 0 {
			scryfallLogger.Debug().Int64("entries", n).Msg("Evicted stale card cache entries")
		}
		s.Scryfall = cached
	}
	return s
}

func (s *Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Services) dispatch(e events.Event) {
	if s.Events != nil {
		s.Events.Dispatch(e)
	}
}

func (s *Services) config() *config.Config {
	if s.Config == nil {
		return config.DefaultConfig()
	}
	return s.Config
}

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError reports user input that cannot be applied, such as a decklist
// without a single readable card.
type ValidationError struct {
	Message  string                  `json:"message"`
	Problems []deckimport.ParseError `json:"problems,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
