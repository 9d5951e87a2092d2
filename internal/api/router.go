package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/postservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// showDetails includes error diagnostics in failure envelopes (development).
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *postservice.Service, authEnabled bool, token string, showDetails bool, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, showDetails)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Writing vault queries.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/backlinks", h.GetBacklinks)
	r.Get("/topics", h.GetTopics)
	r.Get("/folders", h.GetFolders)

	// Search and graph.
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)

	// Decorative logo paths.
	r.Get("/logo", h.Logo)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
