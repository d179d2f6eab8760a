package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/felipemarinho97/lafa-indexer/logging"
)

// FlareSolverr talks to a FlareSolverr instance to get past browser checks.
// One session is created lazily and reused for every request.
type FlareSolverr struct {
	url        string
	maxTimeout int
	httpClient *http.Client

	mu      sync.Mutex
	session string
}

func NewFlareSolverr(url string, timeoutMilli int) *FlareSolverr {
	return &FlareSolverr{url: strings.TrimRight(url, "/"), maxTimeout: timeoutMilli, httpClient: &http.Client{}}
}

type command struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url,omitempty"`
	MaxTimeout int    `json:"maxTimeout,omitempty"`
	Session    string `json:"session,omitempty"`
}

type Response struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Session  string   `json:"session"`
	Sessions []string `json:"sessions"`
	Solution struct {
		Url       string            `json:"url"`
		Status    int               `json:"status"`
		UserAgent string            `json:"userAgent"`
		Headers   map[string]string `json:"headers"`
		Response  string            `json:"response"`
	} `json:"solution"`
}

func (f *FlareSolverr) do(ctx context.Context, cmd command) (*Response, error) {
	jsonBody, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1", f.url), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode flaresolverr response: %w", err)
	}
	if response.Status != "ok" {
		return nil, fmt.Errorf("flaresolverr %s failed: %s", cmd.Cmd, response.Message)
	}
	return &response, nil
}

// retrieveSession returns the cached session, reusing an existing one on the
// server or creating a new one when there is none.
func (f *FlareSolverr) retrieveSession(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != "" {
		return f.session, nil
	}

	list, err := f.do(ctx, command{Cmd: "sessions.list"})
	if err != nil {
		return "", err
	}
	if len(list.Sessions) > 0 {
		f.session = list.Sessions[0]
		return f.session, nil
	}

	logging.Info().Msg("No flaresolverr sessions found, creating a new one")
	created, err := f.do(ctx, command{Cmd: "sessions.create"})
	if err != nil {
		return "", err
	}
	f.session = created.Session
	return f.session, nil
}

// Get fetches url through FlareSolverr and returns the solved page body.
func (f *FlareSolverr) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	session, err := f.retrieveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get flaresolverr session: %w", err)
	}

	response, err := f.do(ctx, command{Cmd: "request.get", URL: url, MaxTimeout: f.maxTimeout, Session: session})
	if err != nil {
		return nil, err
	}

	if challengeRegex.MatchString(response.Solution.Response) {
		return nil, fmt.Errorf("flaresolverr could not solve challenge for %s", url)
	}

	return io.NopCloser(strings.NewReader(response.Solution.Response)), nil
}
