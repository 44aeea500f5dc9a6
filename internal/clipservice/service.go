// Package clipservice coordinates message resolution, rendering, book/tag
// listing, and note creation. It is the single surface the HTTP API, MCP
// server, and CLI all drive.
package clipservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/prefstore"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/render"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/resolve"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
)

// NoteStore is the subset of the Inkdrop client the service depends on.
type NoteStore interface {
	ListBooks(ctx context.Context) ([]inkdrop.Book, error)
	ListTags(ctx context.Context) ([]inkdrop.Tag, error)
	CreateNote(ctx context.Context, draft inkdrop.NoteDraft) error
}

// Verify *inkdrop.Client satisfies NoteStore at compile time.
var _ NoteStore = (*inkdrop.Client)(nil)

// Preview pairs a resolved message with its rendered markdown.
type Preview struct {
	Message  *slack.Message `json:"message"`
	Markdown string         `json:"markdown"`
}

// SaveMessageRequest describes an end-to-end clip: resolve URL, render, save.
type SaveMessageRequest struct {
	URL    string
	BookID string
	Tags   []string
	Share  string
	Status string
}

// Service wires the message source, note store, and preference store.
type Service struct {
	messages resolve.MessageService
	notes    NoteStore
	prefs    *prefstore.Store
}

// New creates a Service.
func New(messages resolve.MessageService, notes NoteStore, prefs *prefstore.Store) *Service {
	return &Service{messages: messages, notes: notes, prefs: prefs}
}

// Resolve runs a fresh pipeline for rawURL and renders the result.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*Preview, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url is required", apperr.ErrValidation)
	}
	msg, err := resolve.New(s.messages).Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &Preview{Message: msg, Markdown: render.Render(msg)}, nil
}

// Books lists all books along with the default book id from the "book"
// preference. A stored id that no longer matches any current book is treated
// as unset.
func (s *Service) Books(ctx context.Context) ([]inkdrop.Book, string, error) {
	books, err := s.notes.ListBooks(ctx)
	if err != nil {
		return nil, "", err
	}
	def, err := s.prefs.Get(prefstore.KeyBook)
	if err != nil {
		slog.Warn("read book preference failed", slog.String("error", err.Error()))
		def = ""
	}
	if def != "" {
		found := false
		for _, b := range books {
			if b.ID == def {
				found = true
				break
			}
		}
		if !found {
			def = ""
		}
	}
	return books, def, nil
}

// Tags lists all tags.
func (s *Service) Tags(ctx context.Context) ([]inkdrop.Tag, error) {
	return s.notes.ListTags(ctx)
}

// Save validates the draft and creates the note. The "book" preference is
// written only after the remote create succeeds; a preference write failure
// does not fail the save.
func (s *Service) Save(ctx context.Context, draft inkdrop.NoteDraft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if err := s.notes.CreateNote(ctx, draft); err != nil {
		return err
	}
	if err := s.prefs.Set(prefstore.KeyBook, draft.BookID); err != nil {
		slog.Warn("persist book preference failed", slog.String("error", err.Error()))
	}
	return nil
}

// SaveMessage resolves req.URL, renders it, and saves the result as a note.
// Share defaults to private and Status to active when empty.
func (s *Service) SaveMessage(ctx context.Context, req SaveMessageRequest) (*Preview, error) {
	preview, err := s.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	share := req.Share
	if share == "" {
		share = inkdrop.SharePrivate
	}
	status := req.Status
	if status == "" {
		status = inkdrop.StatusActive
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	draft := inkdrop.NoteDraft{
		BookID: req.BookID,
		Status: status,
		Share:  share,
		Body:   preview.Markdown,
		Tags:   tags,
	}
	if err := s.Save(ctx, draft); err != nil {
		return nil, err
	}
	return preview, nil
}
