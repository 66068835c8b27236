package handlers

import (
	"errors"
	"net/http"

	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/moxfield"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/scryfall"
	"github.com/codwats/prism/internal/storage"
)

// writeError maps application errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *facade.ValidationError
		tooMany    *prism.TooManyDecksError
		badOrder   *prism.InvalidOrderError
	)

	switch {
	case errors.As(err, &validation):
		if len(validation.Problems) > 0 {
			response.Fail(w, http.StatusUnprocessableEntity, err, validation.Problems)
			return
		}
		response.UnprocessableEntity(w, err)
	case errors.As(err, &tooMany):
		response.Fail(w, http.StatusUnprocessableEntity, err, tooMany)
	case errors.As(err, &badOrder):
		response.BadRequest(w, err)
	case errors.Is(err, storage.ErrCollectionNotFound),
		errors.Is(err, storage.ErrNoCurrentCollection),
		errors.Is(err, prism.ErrDeckNotFound),
		errors.Is(err, moxfield.ErrDeckNotFound),
		scryfall.IsNotFound(err):
		response.NotFound(w, err)
	case errors.Is(err, prism.ErrDuplicateDeckName),
		errors.Is(err, prism.ErrColorInUse):
		response.Conflict(w, err)
	case errors.Is(err, prism.ErrDeckLimitReached),
		errors.Is(err, prism.ErrInvalidBracket),
		errors.Is(err, prism.ErrEmptyDeckName):
		response.UnprocessableEntity(w, err)
	case errors.Is(err, facade.ErrLookupDisabled):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}
