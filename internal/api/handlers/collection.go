package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/prism"
)

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	facade *facade.CollectionFacade
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(f *facade.CollectionFacade) *CollectionHandler {
	return &CollectionHandler{facade: f}
}

// ListCollections returns every collection.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.facade.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, list)
}

// CreateCollectionRequest represents a request to create a collection.
type CreateCollectionRequest struct {
	Name string `json:"name"`
}

// CreateCollection creates an empty collection.
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, errors.New("invalid request body"))
			return
		}
	}

	c, err := h.facade.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, c)
}

// GetCollection returns a collection with its decks.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.facade.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, c)
}

// DeleteCollection deletes a collection.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if _, err := h.facade.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// UseCollection makes a collection the current one.
func (h *CollectionHandler) UseCollection(w http.ResponseWriter, r *http.Request) {
	c, err := h.facade.Use(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, c)
}

// ProcessCollection runs the stripe assignment and returns the result with the
// changes since the previous run.
func (h *CollectionHandler) ProcessCollection(w http.ResponseWriter, r *http.Request) {
	result, err := h.facade.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// GetOverlap returns the shared card matrix of a collection.
func (h *CollectionHandler) GetOverlap(w http.ResponseWriter, r *http.Request) {
	report, err := h.facade.Overlap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, report)
}

// GetHistory returns the stored processing results of a collection.
func (h *CollectionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := h.facade.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, history)
}

// ReorderRequest is either a manual order of deck indices, a manual order of deck
// IDs, or auto.
type ReorderRequest struct {
	Order   []int    `json:"order,omitempty"`
	DeckIDs []string `json:"deckIds,omitempty"`
	Auto    bool     `json:"auto,omitempty"`
}

// Reorder changes the stripe order of the decks.
func (h *CollectionHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	id := chi.URLParam(r, "id")
	var (
		c   *prism.Collection
		err error
	)
	switch {
	case req.Auto:
		c, err = h.facade.AutoOrder(r.Context(), id)
	case len(req.DeckIDs) > 0:
		c, err = h.facade.ReorderByID(r.Context(), id, req.DeckIDs)
	case req.Order != nil:
		c, err = h.facade.Reorder(r.Context(), id, req.Order)
	default:
		response.BadRequest(w, errors.New("order, deckIds or auto is required"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, c)
}

// MarkCard records that a card has been painted.
func (h *CollectionHandler) MarkCard(w http.ResponseWriter, r *http.Request) {
	h.setMarked(w, r, true)
}

// UnmarkCard clears the painted state of a card.
func (h *CollectionHandler) UnmarkCard(w http.ResponseWriter, r *http.Request) {
	h.setMarked(w, r, false)
}

func (h *CollectionHandler) setMarked(w http.ResponseWriter, r *http.Request, marked bool) {
	c, err := h.facade.SetMarked(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardKey"), marked)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, c)
}

// ImportCollection stores the collection of an exported JSON snapshot.
func (h *CollectionHandler) ImportCollection(w http.ResponseWriter, r *http.Request) {
	snap, err := export.LoadSnapshot(r.Body)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	c, err := h.facade.Import(r.Context(), snap)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, c)
}
