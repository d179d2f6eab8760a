package requester

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html><body><table><tbody class="tbody_class"></tbody></table></body></html>`

const challenge = `<html><head><title>Just a moment...</title></head><body></body></html>`

func read(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestRequester_GetDocument(t *testing.T) {
	t.Parallel()

	t.Run("returns plain response with browser headers", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			_, _ = w.Write([]byte(page))
		}))
		defer srv.Close()

		r := NewRequester(nil, nil)
		body, err := r.GetDocument(context.Background(), srv.URL+"/film/x.htm", "https://top.lafa.site/")

		require.NoError(t, err)
		assert.Equal(t, page, read(t, body))
		h := <-headers
		assert.Contains(t, h.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "https://top.lafa.site/", h.Get("Referer"))
	})

	t.Run("defaults referer to the site root", func(t *testing.T) {
		t.Parallel()

		referers := make(chan string, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			referers <- r.Header.Get("Referer")
			_, _ = w.Write([]byte("<a href=\"/x\">x</a>"))
		}))
		defer srv.Close()

		body, err := NewRequester(nil, nil).GetDocument(context.Background(), srv.URL+"/ajax.php")

		require.NoError(t, err)
		assert.Equal(t, "<a href=\"/x\">x</a>", read(t, body))
		assert.Equal(t, srv.URL+"/", <-referers)
	})

	t.Run("fails on unexpected status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewRequester(nil, nil).GetDocument(context.Background(), srv.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 404")
	})

	t.Run("fails on challenge without flaresolverr", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(challenge))
		}))
		defer srv.Close()

		_, err := NewRequester(nil, nil).GetDocument(context.Background(), srv.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "challenge")
	})

	t.Run("solves challenge through flaresolverr", func(t *testing.T) {
		t.Parallel()

		site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(challenge))
		}))
		defer site.Close()

		var mu sync.Mutex
		var cmds []string
		fs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cmd command
			if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			mu.Lock()
			cmds = append(cmds, cmd.Cmd)
			mu.Unlock()

			resp := map[string]any{"status": "ok"}
			switch cmd.Cmd {
			case "sessions.list":
				resp["sessions"] = []string{}
			case "sessions.create":
				resp["session"] = "s-1"
			case "request.get":
				if cmd.Session != "s-1" || cmd.URL != site.URL {
					resp["status"] = "error"
					resp["message"] = "unexpected request"
				}
				resp["solution"] = map[string]any{"status": 200, "response": page}
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
		defer fs.Close()

		r := NewRequester(NewFlareSolverr(fs.URL, 60000), nil)
		body, err := r.GetDocument(context.Background(), site.URL)

		require.NoError(t, err)
		assert.Equal(t, page, read(t, body))
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"sessions.list", "sessions.create", "request.get"}, cmds)
	})

	t.Run("stops when context is cancelled while paced", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := NewRequester(nil, nil, WithRequestsPerSecond(1))
		_, err := r.GetDocument(ctx, "http://127.0.0.1:1/never")

		require.Error(t, err)
	})
}

func Test_hasChallenge(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{challenge, true},
		{"<p>Site is UNDER ATTACK mode</p>", true},
		{page, false},
	}
	for _, tt := range tests {
		if got := hasChallenge([]byte(tt.body)); got != tt.want {
			t.Errorf("hasChallenge(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
