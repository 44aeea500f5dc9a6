package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/prefstore"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/slack"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/testutil"
)

const (
	repliesOK = `{"ok":true,"messages":[{"text":"deploy done :tada:","ts":"1700000000.123456","user":"U1"}]}`
	userOK    = `{"ok":true,"user":{"id":"U1","profile":{"display_name_normalized":"alice","image_24":"https://img/a.png"}}}`
	channelOK = `{"ok":true,"channel":{"id":"C123","name":"general"}}`
	linkOK    = `{"ok":true,"permalink":"https://acme.slack.com/archives/C123/p1700000000123456"}`
	booksOK   = `[{"_id":"b1","name":"Inbox"},{"_id":"","name":"broken"},{"_id":"b2","name":"Work"}]`
	tagsOK    = `[{"_id":"t1","name":"go","color":"blue"},{"_id":"t2","name":"bad","color":"sparkle"}]`

	msgURL = "https://acme.slack.com/archives/C123/p1700000000123456"
)

type env struct {
	router   http.Handler
	prefs    *prefstore.Store
	inkdrops *[]*http.Request // requests seen by the fake Inkdrop server
}

// testEnv wires the full stack behind fake Slack and Inkdrop transports.
func testEnv(t *testing.T, authToken string) *env {
	t.Helper()

	slackClient := slack.NewClient(
		func() string { return "xoxb-test" },
		slack.WithDoer(testutil.RouteByPath(t, map[string]string{
			"conversations.replies": repliesOK,
			"users.info":            userOK,
			"conversations.info":    channelOK,
			"chat.getPermalink":     linkOK,
		}, nil)),
	)

	var seen []*http.Request
	inkdropClient := inkdrop.NewClient(
		func() inkdrop.Options {
			return inkdrop.Options{Address: "localhost", Port: 19840, Username: "u", Password: "p"}
		},
		inkdrop.WithDoer(testutil.DoerFunc(func(r *http.Request) (*http.Response, error) {
			seen = append(seen, r)
			switch {
			case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/books"):
				return testutil.JSONResponse(http.StatusOK, booksOK), nil
			case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/tags"):
				return testutil.JSONResponse(http.StatusOK, tagsOK), nil
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/notes"):
				return testutil.JSONResponse(http.StatusCreated, `{}`), nil
			}
			return testutil.JSONResponse(http.StatusNotFound, `{}`), nil
		})),
	)

	prefs := testutil.TestStore(t)
	svc := clipservice.New(slackClient, inkdropClient, prefs)
	router := NewRouter(svc, authToken != "", authToken)
	return &env{router: router, prefs: prefs, inkdrops: &seen}
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestResolve(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodPost, "/resolve", `{"url":"`+msgURL+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, body = %s", w.Code, w.Body.String())
	}
	var preview Preview
	_ = json.Unmarshal(w.Body.Bytes(), &preview)
	if preview.Message == nil || preview.Message.Text != "deploy done :tada:" {
		t.Errorf("message = %+v", preview.Message)
	}
	if !strings.Contains(preview.Markdown, "alice") || !strings.Contains(preview.Markdown, "Posted in #general") {
		t.Errorf("markdown = %q", preview.Markdown)
	}
}

func TestResolve_BadURL(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodPost, "/resolve", `{"url":"https://example.com/x"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResolve_MissingURL(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodPost, "/resolve", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResolve_MessageNotFound(t *testing.T) {
	slackClient := slack.NewClient(func() string { return "t" }, slack.WithDoer(testutil.RouteByPath(t, map[string]string{
		"conversations.replies": `{"ok":false,"error":"thread_not_found"}`,
	}, nil)))
	prefs := testutil.TestStore(t)
	svc := clipservice.New(slackClient, inkdrop.NewClient(func() inkdrop.Options { return inkdrop.Options{} }), prefs)
	router := NewRouter(svc, false, "")

	w := do(t, router, http.MethodPost, "/resolve", `{"url":"`+msgURL+`"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBooks_DropsMalformedAndDefault(t *testing.T) {
	e := testEnv(t, "")
	_ = e.prefs.Set(prefstore.KeyBook, "b2")

	w := do(t, e.router, http.MethodGet, "/books", "")
	if w.Code != http.StatusOK {
		t.Fatalf("books status = %d", w.Code)
	}
	var resp BooksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Books) != 2 {
		t.Errorf("books = %+v, want malformed record dropped", resp.Books)
	}
	if resp.DefaultBookID != "b2" {
		t.Errorf("default = %q, want b2", resp.DefaultBookID)
	}
}

func TestTags_TintIncluded(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodGet, "/tags", "")
	if w.Code != http.StatusOK {
		t.Fatalf("tags status = %d", w.Code)
	}
	var resp TagsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Tags) != 1 {
		t.Fatalf("tags = %+v, want bad-color record dropped", resp.Tags)
	}
	if resp.Tags[0].Tint == "" {
		t.Error("tint should be populated")
	}
}

func TestSaveNote(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodPost, "/notes",
		`{"url":"`+msgURL+`","book_id":"b1","tags":["t1"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	if v, _ := e.prefs.Get(prefstore.KeyBook); v != "b1" {
		t.Errorf("book preference = %q, want b1", v)
	}

	var posted *http.Request
	for _, r := range *e.inkdrops {
		if r.Method == http.MethodPost {
			posted = r
		}
	}
	if posted == nil {
		t.Fatal("note was never posted to Inkdrop")
	}
}

func TestSaveNote_MissingBook(t *testing.T) {
	e := testEnv(t, "")
	w := do(t, e.router, http.MethodPost, "/notes", `{"url":"`+msgURL+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if v, _ := e.prefs.Get(prefstore.KeyBook); v != "" {
		t.Errorf("preference should stay unset, got %q", v)
	}
}

func TestAuth(t *testing.T) {
	e := testEnv(t, "sekret")

	w := do(t, e.router, http.MethodGet, "/books", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", rec.Code)
	}
}
