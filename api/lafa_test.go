package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteStub answers quicksearch requests with quicksearch and every other URL
// from pages.
type siteStub struct {
	quicksearch string
	pages       map[string]string
}

func (s siteStub) GetDocument(_ context.Context, url string, _ ...string) (io.ReadCloser, error) {
	if strings.Contains(url, "action=quicksearch") {
		if s.quicksearch == "" {
			return nil, errors.New("connection refused")
		}
		return io.NopCloser(strings.NewReader(s.quicksearch)), nil
	}
	page, ok := s.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

const titlePage = `<table><tbody class="tbody_class">
<tr><td><div style="float:left;">The Crown S01 [by rutor.info]</div><a class="dlink_t no-pop" href="/dl/1">dl</a></td></tr>
<tr class="expand-child"><td><div style="clear:both;">1920x1080</div></td></tr>
<tr class="sep"></tr>
<tr><td><div style="float:left;">Enola Holmes</div><a class="dlink_t no-pop" href="/dl/2">dl</a></td></tr>
<tr class="expand-child"><td></td></tr>
</tbody></table>`

func newTestIndexer(stub siteStub) *Indexer {
	engine := lafa.NewEngine(stub, monitoring.NewMetrics())
	return NewIndexers(engine, nil)
}

func TestHandlerLafaIndexer(t *testing.T) {
	i := newTestIndexer(siteStub{
		quicksearch: `<a href="/film/enola.htm">Enola</a>`,
		pages:       map[string]string{"https://top.lafa.site/film/enola.htm": titlePage},
	})

	req := httptest.NewRequest(http.MethodGet, "/indexers/lafa?q=enola+holmes&category=movies", nil)
	rec := httptest.NewRecorder()
	i.HandlerLafaIndexer(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)

	// best match first
	assert.Equal(t, "Enola Holmes", resp.Results[0].Name)
	assert.Equal(t, "https://top.lafa.site/dl/2", resp.Results[0].Link)
	assert.Greater(t, resp.Results[0].Similarity, resp.Results[1].Similarity)

	assert.Equal(t, "The Crown S01 (1920x1080)", resp.Results[1].Name)
	assert.Equal(t, "https://top.lafa.site/film/enola.htm", resp.Results[1].DescLink)
}

func TestHandlerLafaIndexer_NoQueryKeepsPageOrder(t *testing.T) {
	i := newTestIndexer(siteStub{
		quicksearch: `<a href="/film/enola.htm">Enola</a>`,
		pages:       map[string]string{"https://top.lafa.site/film/enola.htm": titlePage},
	})

	rec := httptest.NewRecorder()
	i.HandlerLafaIndexer(rec, httptest.NewRequest(http.MethodGet, "/indexers/lafa", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://top.lafa.site/dl/1", resp.Results[0].Link)
	assert.Zero(t, resp.Results[0].Similarity)
}

func TestHandlerLafaIndexer_SearchError(t *testing.T) {
	i := newTestIndexer(siteStub{})

	rec := httptest.NewRecorder()
	i.HandlerLafaIndexer(rec, httptest.NewRequest(http.MethodGet, "/indexers/lafa?q=x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "connection refused")
}

func TestHandlerLafaIndexer_MethodNotAllowed(t *testing.T) {
	i := newTestIndexer(siteStub{})

	rec := httptest.NewRecorder()
	i.HandlerLafaIndexer(rec, httptest.NewRequest(http.MethodPost, "/indexers/lafa", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	HandlerIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body, "build")
	assert.Contains(t, body["endpoints"], "/indexers/lafa")

	rec = httptest.NewRecorder()
	HandlerIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
