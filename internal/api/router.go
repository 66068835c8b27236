package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codwats/prism/internal/api/handlers"
	"github.com/codwats/prism/internal/api/response"
	"github.com/codwats/prism/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		collectionHandler := handlers.NewCollectionHandler(s.collectionFacade)
		deckHandler := handlers.NewDeckHandler(s.collectionFacade)
		exportHandler := handlers.NewExportHandler(s.collectionFacade)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", collectionHandler.ListCollections)
			r.Post("/", collectionHandler.CreateCollection)
			r.Post("/import", collectionHandler.ImportCollection)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", collectionHandler.GetCollection)
				r.Delete("/", collectionHandler.DeleteCollection)
				r.Post("/use", collectionHandler.UseCollection)
				r.Post("/process", collectionHandler.ProcessCollection)
				r.Get("/overlap", collectionHandler.GetOverlap)
				r.Get("/history", collectionHandler.GetHistory)
				r.Post("/reorder", collectionHandler.Reorder)
				r.Put("/marks/{cardKey}", collectionHandler.MarkCard)
				r.Delete("/marks/{cardKey}", collectionHandler.UnmarkCard)

				r.Post("/decks", deckHandler.AddDeck)
				r.Put("/decks/{deckID}", deckHandler.UpdateDeck)
				r.Delete("/decks/{deckID}", deckHandler.RemoveDeck)

				r.Get("/export/{format}", exportHandler.Export)
				r.Get("/charts/{kind}", exportHandler.Chart)
			})
		})

		r.Post("/decks/parse", deckHandler.ParseDeckList)

		cardHandler := handlers.NewCardHandler(s.cardFacade)
		r.Get("/cards/{name}", cardHandler.GetCardByName)
	})
}

// healthCheck reports server and database health. An unreachable database makes
// the server unhealthy.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	status, code, database := "healthy", http.StatusOK, "ok"
	if s.store == nil {
		database = "not configured"
	} else if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Database health check failed")
		status, code, database = "unhealthy", http.StatusServiceUnavailable, "unavailable"
	}

	response.JSON(w, code, map[string]interface{}{
		"status":   status,
		"service":  "prism-api",
		"version":  version.Version,
		"database": database,
		"clients":  s.wsHub.ClientCount(),
	})
}
