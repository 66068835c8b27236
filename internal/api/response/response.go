// Package response writes the bodies returned by the PRISM API: a {"data": ...}
// envelope on success, a Problem on failure, and raw downloads for exports.
package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Envelope wraps every successful JSON payload.
type Envelope struct {
	Data any `json:"data"`
}

// Problem is the body of every failed request.
type Problem struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Success writes data with 200 OK.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Data: data})
}

// Created writes data with 201 Created.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Data: data})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Download writes a rendered export. A non-empty filename makes browsers save the
// body instead of showing it.
func Download(w http.ResponseWriter, contentType, filename string, body io.WriterTo) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

// Fail writes a Problem for err. details, when present, carries structured
// context such as the unreadable lines of a decklist.
func Fail(w http.ResponseWriter, status int, err error, details ...any) {
	p := Problem{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	}
	if len(details) > 0 {
		p.Details = details[0]
	}
	JSON(w, status, p)
}

// Shorthands for the statuses the handlers use.

func BadRequest(w http.ResponseWriter, err error) { Fail(w, http.StatusBadRequest, err) }
func NotFound(w http.ResponseWriter, err error) { Fail(w, http.StatusNotFound, err) }
func Conflict(w http.ResponseWriter, err error) { Fail(w, http.StatusConflict, err) }
func UnprocessableEntity(w http.ResponseWriter, err error) { Fail(w, http.StatusUnprocessableEntity, err) }
func InternalError(w http.ResponseWriter, err error) { Fail(w, http.StatusInternalServerError, err) }
func ServiceUnavailable(w http.ResponseWriter, err error) { Fail(w, http.StatusServiceUnavailable, err) }
