package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/facade"
)

// CardHandler handles card-related API requests.
type CardHandler struct {
	facade *facade.CardFacade
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(f *facade.CardFacade) *CardHandler {
	return &CardHandler{facade: f}
}

// GetCardByName returns Scryfall details of a card.
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	card, err := h.facade.LookupCard(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, card)
}
