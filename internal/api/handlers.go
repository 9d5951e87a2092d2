package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/lineart"
	"github.com/starford/ansuz/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
	// showDetails includes error diagnostics in responses; off in production.
	showDetails bool
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service, showDetails bool) *Handler {
	return &Handler{svc: svc, showDetails: showDetails}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	details := ""
	if h.showDetails {
		details = err.Error()
	}
	writeError(w, http.StatusInternalServerError, "internal error", details)
}

// ListPosts handles GET /api/posts with optional ?topic= and ?folder=
// filters. Filters are mutually exclusive; topic wins when both are given.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if topic := q.Get("topic"); topic != "" {
		posts, err := h.svc.PostsByTopic(r.Context(), topic)
		if err != nil {
			h.internalError(w, "list posts by topic", err)
			return
		}
		writeData(w, http.StatusOK, summarize(posts))
		return
	}

	if folder := q.Get("folder"); folder != "" {
		posts, err := h.svc.PostsByFolder(r.Context(), folder)
		if err != nil {
			h.internalError(w, "list posts by folder", err)
			return
		}
		writeData(w, http.StatusOK, summarize(posts))
		return
	}

	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.internalError(w, "list posts", err)
		return
	}
	writeData(w, http.StatusOK, summarize(posts))
}

// GetPost handles GET /api/posts/{slug}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "")
			return
		}
		h.internalError(w, "get post", err)
		return
	}
	writeData(w, http.StatusOK, post)
}

// GetBacklinks handles GET /api/posts/{slug}/backlinks.
func (h *Handler) GetBacklinks(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	bl, err := h.svc.BacklinksFor(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", "")
			return
		}
		h.internalError(w, "get backlinks", err)
		return
	}
	writeData(w, http.StatusOK, bl)
}

// GetTopics handles GET /api/topics.
func (h *Handler) GetTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.svc.Topics(r.Context())
	if err != nil {
		h.internalError(w, "list topics", err)
		return
	}
	writeData(w, http.StatusOK, topics)
}

// GetFolders handles GET /api/folders.
func (h *Handler) GetFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.FolderStructure(r.Context())
	if err != nil {
		h.internalError(w, "folder structure", err)
		return
	}
	writeData(w, http.StatusOK, folders)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required", "")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		h.internalError(w, "search", err)
		return
	}
	writeData(w, http.StatusOK, results)
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := h.svc.Graph(r.Context())
	if err != nil {
		h.internalError(w, "graph", err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"nodes": nodes,
		"edges": edges,
	})
}

// Logo handles GET /api/logo: the torus line-art paths for the site logo.
func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, lineart.Generate(lineart.DefaultConfig()))
}
