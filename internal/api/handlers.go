package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *clipservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *clipservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps service errors onto HTTP statuses. Parse and validation
// failures are the caller's fault; not-found means the message is gone
// upstream; anything else is a transport failure surfaced verbatim.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrBadURL), errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		slog.Error("upstream call failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	}
}

// Resolve handles POST /resolve: parse the URL, fetch the message, and
// return the aggregated view with its rendered markdown.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	preview, err := h.svc.Resolve(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Books handles GET /books.
func (h *Handler) Books(w http.ResponseWriter, r *http.Request) {
	books, def, err := h.svc.Books(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BooksResponse{Books: books, DefaultBookID: def})
}

// Tags handles GET /tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]TagItem, len(tags))
	for i, t := range tags {
		items[i] = TagItem{ID: t.ID, Name: t.Name, Color: t.Color, Tint: t.Color.Tint()}
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: items})
}

// SaveNote handles POST /notes: resolve, render, and save in one step.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	preview, err := h.svc.SaveMessage(r.Context(), clipservice.SaveMessageRequest{
		URL:    req.URL,
		BookID: req.BookID,
		Tags:   req.Tags,
		Share:  req.Share,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, preview)
}
