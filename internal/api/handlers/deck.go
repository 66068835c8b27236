package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/facade"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	facade *facade.CollectionFacade
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(f *facade.CollectionFacade) *DeckHandler {
	return &DeckHandler{facade: f}
}

// AddDeck adds a deck to a collection from a decklist, a Moxfield URL or a card list.
func (h *DeckHandler) AddDeck(w http.ResponseWriter, r *http.Request) {
	var req facade.AddDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	result, err := h.facade.AddDeck(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, result)
}

// UpdateDeck replaces the details of a deck.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req facade.AddDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	result, err := h.facade.UpdateDeck(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "deckID"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// RemoveDeck deletes a deck from a collection.
func (h *DeckHandler) RemoveDeck(w http.ResponseWriter, r *http.Request) {
	result, err := h.facade.RemoveDeck(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// ParseDeckListRequest represents a request to parse a decklist.
type ParseDeckListRequest struct {
	DeckList string `json:"deckList"`
}

// ParseDeckList parses decklist text without storing it.
func (h *DeckHandler) ParseDeckList(w http.ResponseWriter, r *http.Request) {
	var req ParseDeckListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.DeckList == "" {
		response.BadRequest(w, errors.New("deckList is required"))
		return
	}

	response.Success(w, h.facade.ParseDeck(req.DeckList))
}
