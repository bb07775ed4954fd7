// Package server exposes the issue store over HTTP. It is plumbing around
// the core: routing, JSON encoding, and error classification live here,
// the update semantics live in the merge package.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dufangshi/issues/internal/storage"
)

// NewRouter wires the HTTP routes and middleware.
func NewRouter(store storage.Storage, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))

	handlers := NewIssueHandlers(store)

	r.Get("/health", HealthHandler)

	r.Route("/api/issues", func(r chi.Router) {
		r.Post("/", handlers.CreateIssue)
		r.Get("/", handlers.ListIssues)
		r.Get("/stats", handlers.GetStatistics)

		r.Route("/{issueID}", func(r chi.Router) {
			r.Get("/", handlers.GetIssue)
			r.Patch("/", handlers.UpdateIssue)
			r.Delete("/", handlers.DeleteIssue)
			r.Post("/comments", handlers.AppendComment)
			r.Put("/assignees", handlers.ReplaceAssignees)
		})
	})

	return r
}
