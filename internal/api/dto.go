package api

import (
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
)

// ResolveRequest is the request body for previewing a message.
type ResolveRequest struct {
	URL string `json:"url"`
}

// Preview is the resolve response (aliased from the service layer).
type Preview = clipservice.Preview

// BooksResponse wraps the book listing with the pre-selected default.
type BooksResponse struct {
	Books         []inkdrop.Book `json:"books"`
	DefaultBookID string         `json:"default_book_id,omitempty"`
}

// TagItem is a tag enriched with its display tint.
type TagItem struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Color inkdrop.Color `json:"color"`
	Tint  string        `json:"tint,omitempty"`
}

// TagsResponse wraps the tag listing.
type TagsResponse struct {
	Tags []TagItem `json:"tags"`
}

// SaveNoteRequest is the request body for clipping a message into a book.
type SaveNoteRequest struct {
	URL    string   `json:"url"`
	BookID string   `json:"book_id"`
	Tags   []string `json:"tags,omitempty"`
	Share  string   `json:"share,omitempty"`
	Status string   `json:"status,omitempty"`
}
