// Package testutil provides shared test helpers: fake HTTP transports and a
// temporary preference store.
package testutil

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/prefstore"
)

// DoerFunc adapts a function to the Doer interface used by the API clients.
type DoerFunc func(*http.Request) (*http.Response, error)

// Do implements the Doer interface.
func (f DoerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

// JSONResponse builds an *http.Response with the given status and JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// RouteByPath returns a DoerFunc that answers each request with the canned
// JSON body whose key is a suffix of the request path, recording call counts
// per key. Unmatched paths get a 404.
func RouteByPath(t *testing.T, routes map[string]string, calls map[string]int) DoerFunc {
	t.Helper()
	return func(r *http.Request) (*http.Response, error) {
		for key, body := range routes {
			if strings.HasSuffix(r.URL.Path, key) {
				if calls != nil {
					calls[key]++
				}
				return JSONResponse(http.StatusOK, body), nil
			}
		}
		return JSONResponse(http.StatusNotFound, `{"error":"no route"}`), nil
	}
}

// TestStore creates a temporary SQLite preference store that is cleaned up
// with the test.
func TestStore(t *testing.T) *prefstore.Store {
	t.Helper()
	store, err := prefstore.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
