package clipservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/permalink"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/prefstore"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/testutil"
)

type fakeMessages struct {
	msg *slack.Message
	err error
}

func (f *fakeMessages) GetMessage(_ context.Context, _ permalink.Locator) (*slack.Message, error) {
	return f.msg, f.err
}

type fakeNotes struct {
	books     []inkdrop.Book
	tags      []inkdrop.Tag
	created   []inkdrop.NoteDraft
	createErr error
}

func (f *fakeNotes) ListBooks(_ context.Context) ([]inkdrop.Book, error) { return f.books, nil }
func (f *fakeNotes) ListTags(_ context.Context) ([]inkdrop.Tag, error)  { return f.tags, nil }
func (f *fakeNotes) CreateNote(_ context.Context, d inkdrop.NoteDraft) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, d)
	return nil
}

const testURL = "https://acme.slack.com/archives/C123/p1700000000123456"

func testService(t *testing.T, messages *fakeMessages, notes *fakeNotes) (*Service, *prefstore.Store) {
	t.Helper()
	prefs := testutil.TestStore(t)
	return New(messages, notes, prefs), prefs
}

func TestResolve_RendersMarkdown(t *testing.T) {
	svc, _ := testService(t, &fakeMessages{msg: &slack.Message{Text: "hi", Timestamp: 1700000000}}, &fakeNotes{})
	preview, err := svc.Resolve(context.Background(), testURL)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(preview.Markdown, "hi") {
		t.Errorf("markdown = %q", preview.Markdown)
	}
	if preview.Message == nil {
		t.Error("preview should carry the message")
	}
}

func TestResolve_EmptyURL(t *testing.T) {
	svc, _ := testService(t, &fakeMessages{}, &fakeNotes{})
	_, err := svc.Resolve(context.Background(), "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestBooks_DefaultOnlyWhenPresent(t *testing.T) {
	notes := &fakeNotes{books: []inkdrop.Book{{ID: "b1", Name: "Inbox"}, {ID: "b2", Name: "Work"}}}
	svc, prefs := testService(t, &fakeMessages{}, notes)

	// No preference yet.
	_, def, err := svc.Books(context.Background())
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if def != "" {
		t.Errorf("default = %q, want empty", def)
	}

	// Stored id matching a current book.
	_ = prefs.Set(prefstore.KeyBook, "b2")
	_, def, _ = svc.Books(context.Background())
	if def != "b2" {
		t.Errorf("default = %q, want b2", def)
	}

	// Stale id is not surfaced.
	_ = prefs.Set(prefstore.KeyBook, "gone")
	_, def, _ = svc.Books(context.Background())
	if def != "" {
		t.Errorf("stale default = %q, want empty", def)
	}
}

func TestSave_WritesPreferenceAfterSuccess(t *testing.T) {
	notes := &fakeNotes{}
	svc, prefs := testService(t, &fakeMessages{}, notes)

	draft := inkdrop.NoteDraft{
		BookID: "b7",
		Status: inkdrop.StatusActive,
		Share:  inkdrop.SharePrivate,
		Body:   "# note",
		Tags:   []string{},
	}
	if err := svc.Save(context.Background(), draft); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(notes.created) != 1 {
		t.Fatalf("created %d notes, want 1", len(notes.created))
	}
	if v, _ := prefs.Get(prefstore.KeyBook); v != "b7" {
		t.Errorf("book preference = %q, want b7", v)
	}
}

func TestSave_FailureLeavesPreferenceUntouched(t *testing.T) {
	notes := &fakeNotes{createErr: errors.New("boom")}
	svc, prefs := testService(t, &fakeMessages{}, notes)
	_ = prefs.Set(prefstore.KeyBook, "old")

	draft := inkdrop.NoteDraft{BookID: "new", Status: inkdrop.StatusActive, Share: inkdrop.SharePrivate, Body: "x"}
	if err := svc.Save(context.Background(), draft); err == nil {
		t.Fatal("Save should fail")
	}
	if v, _ := prefs.Get(prefstore.KeyBook); v != "old" {
		t.Errorf("preference = %q, want old (untouched)", v)
	}
}

func TestSave_InvalidDraft(t *testing.T) {
	svc, _ := testService(t, &fakeMessages{}, &fakeNotes{})
	err := svc.Save(context.Background(), inkdrop.NoteDraft{Body: "x", Status: inkdrop.StatusActive, Share: inkdrop.SharePrivate})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSaveMessage_EndToEnd(t *testing.T) {
	notes := &fakeNotes{}
	svc, _ := testService(t, &fakeMessages{msg: &slack.Message{Text: "clip me", Timestamp: 1700000000}}, notes)

	preview, err := svc.SaveMessage(context.Background(), SaveMessageRequest{
		URL:    testURL,
		BookID: "b1",
		Tags:   []string{"t1", "t2"},
	})
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if len(notes.created) != 1 {
		t.Fatalf("created %d notes", len(notes.created))
	}
	d := notes.created[0]
	if d.Share != inkdrop.SharePrivate || d.Status != inkdrop.StatusActive {
		t.Errorf("defaults not applied: %+v", d)
	}
	if len(d.Tags) != 2 {
		t.Errorf("tags = %v, want the selected tag ids passed through", d.Tags)
	}
	if d.Body != preview.Markdown {
		t.Error("note body should be the rendered markdown")
	}
}

func TestSaveMessage_ResolveFailureDoesNotCreate(t *testing.T) {
	notes := &fakeNotes{}
	svc, _ := testService(t, &fakeMessages{err: apperr.ErrNotFound}, notes)
	_, err := svc.SaveMessage(context.Background(), SaveMessageRequest{URL: testURL, BookID: "b1"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(notes.created) != 0 {
		t.Error("no note should be created when resolution fails")
	}
}
