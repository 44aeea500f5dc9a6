// Package inkdrop is a client for the Inkdrop local HTTP server: book and
// tag listings plus note creation, over basic auth.
package inkdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
)

// Share values for a note.
const (
	SharePrivate = "private"
	SharePublic  = "public"
)

// Status values for a note.
const (
	StatusActive    = "active"
	StatusOnHold    = "onHold"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
	StatusNone      = "none"
)

// Book is a top-level container for notes.
type Book struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tag is a colored label attachable to notes.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// NoteDraft is the payload for creating a note. Field names follow the
// Inkdrop wire format.
type NoteDraft struct {
	BookID string   `json:"bookId"`
	Status string   `json:"status"`
	Share  string   `json:"share"`
	Body   string   `json:"body"`
	Tags   []string `json:"tags"`
}

// Validate checks the draft before it is posted.
func (d NoteDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.BookID, validation.Required),
		validation.Field(&d.Body, validation.Required),
		validation.Field(&d.Share, validation.Required, validation.In(SharePrivate, SharePublic)),
		validation.Field(&d.Status, validation.Required,
			validation.In(StatusActive, StatusOnHold, StatusCompleted, StatusDropped, StatusNone)),
	)
}

// Options holds the connection settings for the Inkdrop local server.
type Options struct {
	Address  string
	Port     int
	Username string
	Password string
}

func (o Options) baseURL() string {
	return fmt.Sprintf("http://%s:%d", o.Address, o.Port)
}

// OptionsFunc supplies the current connection settings, allowing credential
// rotation at runtime.
type OptionsFunc func() Options

// Doer executes a single HTTP request.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client calls the Inkdrop local server through an injected Doer.
type Client struct {
	http Doer
	opts OptionsFunc
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// NewClient creates a Client connecting with the settings from opts.
func NewClient(opts OptionsFunc, clientOpts ...Option) *Client {
	c := &Client{
		http: http.DefaultClient,
		opts: opts,
	}
	for _, opt := range clientOpts {
		opt(c)
	}
	return c
}

// Records come back keyed by an underscore-prefixed id.

type wireBook struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type wireTag struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// ListBooks fetches all books. Records missing an id or name are dropped
// silently; only transport-level failures return an error.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var raw []wireBook
	if err := c.get(ctx, "/books", &raw); err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(raw))
	for _, b := range raw {
		if b.ID == "" || b.Name == "" {
			continue
		}
		books = append(books, Book{ID: b.ID, Name: b.Name})
	}
	return books, nil
}

// ListTags fetches all tags, dropping records missing an id, name, or a
// valid color.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var raw []wireTag
	if err := c.get(ctx, "/tags", &raw); err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, len(raw))
	for _, t := range raw {
		if t.ID == "" || t.Name == "" || !t.Color.Valid() {
			continue
		}
		tags = append(tags, Tag{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return tags, nil
}

// CreateNote posts the draft. A single attempt; any non-2xx response is a
// hard failure.
func (c *Client) CreateNote(ctx context.Context, draft NoteDraft) error {
	if draft.Tags == nil {
		draft.Tags = []string{}
	}
	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("inkdrop: encode note: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts().baseURL()+"/notes", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("inkdrop: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inkdrop: create note: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("inkdrop: create note: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts().baseURL()+path, nil)
	if err != nil {
		return fmt.Errorf("inkdrop: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inkdrop: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("inkdrop: get %s: %w", path, apperr.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inkdrop: get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("inkdrop: get %s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	o := c.opts()
	req.SetBasicAuth(o.Username, o.Password)
}
