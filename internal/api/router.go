package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *clipservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Message preview.
	r.Post("/resolve", h.Resolve)

	// Inkdrop listings.
	r.Get("/books", h.Books)
	r.Get("/tags", h.Tags)

	// Clip a message into a book.
	r.Post("/notes", h.SaveNote)

	return r
}
