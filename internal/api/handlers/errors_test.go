package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codwats/prism/internal/deckimport"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/moxfield"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/scryfall"
	"github.com/codwats/prism/internal/storage"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &facade.ValidationError{Message: "bad"}, http.StatusUnprocessableEntity},
		{"validation with problems", &facade.ValidationError{Message: "bad", Problems: []deckimport.ParseError{{Line: 1}}}, http.StatusUnprocessableEntity},
		{"too many decks", &prism.TooManyDecksError{Decks: 23, Pending: 1, PaletteSize: 22}, http.StatusUnprocessableEntity},
		{"invalid order", &prism.InvalidOrderError{Reason: prism.OrderDuplicate}, http.StatusBadRequest},
		{"collection not found", fmt.Errorf("%w: x", storage.ErrCollectionNotFound), http.StatusNotFound},
		{"no current collection", storage.ErrNoCurrentCollection, http.StatusNotFound},
		{"deck not found", prism.ErrDeckNotFound, http.StatusNotFound},
		{"moxfield deck not found", &facade.AppError{Message: "fetch", Err: moxfield.ErrDeckNotFound}, http.StatusNotFound},
		{"card not found", &scryfall.NotFoundError{URL: "/cards/named"}, http.StatusNotFound},
		{"duplicate deck", fmt.Errorf("%w: Atraxa", prism.ErrDuplicateDeckName), http.StatusConflict},
		{"colour in use", prism.ErrColorInUse, http.StatusConflict},
		{"deck limit", prism.ErrDeckLimitReached, http.StatusUnprocessableEntity},
		{"lookup disabled", facade.ErrLookupDisabled, http.StatusServiceUnavailable},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("writeError(%v) status = %d, want %d", tt.err, rec.Code, tt.status)
			}
		})
	}
}
