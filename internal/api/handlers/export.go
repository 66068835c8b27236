package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/charts"
	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/facade"
)

// ExportHandler serves collection downloads and charts.
type ExportHandler struct {
	facade *facade.CollectionFacade
	now    func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(f *facade.CollectionFacade) *ExportHandler {
	return &ExportHandler{facade: f, now: time.Now}
}

// Export downloads a collection as CSV, JSON snapshot or HTML marking guide.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	c, err := h.facade.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	// Rendered into a buffer so failures still produce a JSON error.
	var buf bytes.Buffer
	if err := h.facade.Export(r.Context(), c.ID, format, &buf); err != nil {
		writeError(w, err)
		return
	}

	// The HTML guide opens in the browser for printing.
	filename := ""
	if format != export.FormatHTML {
		filename = export.GenerateFilename(export.SafeName(c.Name), format, h.now())
	}
	response.Download(w, format.ContentType(), filename, &buf)
}

// Chart renders an interactive chart of a collection: "overlap" or "shared".
func (h *ExportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	c, data, err := h.facade.Preview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	cfg := charts.DefaultChartConfig()
	cfg.Subtitle = c.Name

	var render func(io.Writer) error
	switch kind := chi.URLParam(r, "kind"); kind {
	case "overlap":
		render = func(w io.Writer) error { return charts.RenderOverlapHeatMap(data.Decks, cfg, w) }
	case "shared":
		render = func(w io.Writer) error { return charts.RenderMostSharedBar(data, cfg, w) }
	default:
		response.NotFound(w, fmt.Errorf("unknown chart %q", kind))
		return
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		response.InternalError(w, err)
		return
	}
	response.Download(w, "text/html; charset=utf-8", "", &buf)
}
