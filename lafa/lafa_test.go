package lafa

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/felipemarinho97/lafa-indexer/parser"
	"github.com/felipemarinho97/lafa-indexer/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGetter serves pages from a map and records what was asked for.
type fakeGetter struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

func (f *fakeGetter) GetDocument(_ context.Context, url string, _ ...string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

const quicksearch = `<ul>
<li><a href="/film/a.htm">A</a></li>
<li><a title="skipped" href="/film/skipped.htm">S</a></li>
<li><a href="/film/missing.htm">M</a></li>
<li><a href="/film/b.htm">B</a></li>
</ul>`

const pageA = `<table><tbody class="tbody_class">
<tr><td><div style="float:left;">Alpha 1080p</div><a class="dlink_t no-pop" href="/dl/a1">dl</a></td>
<td data-sort-value="1">1.5 GB</td><td><span id="seeders_a1">5</span></td><td><span id="leechers_a1">1</span></td></tr>
<tr class="expand-child"><td><div style="clear:both;">1920x1080</div></td></tr>
<tr class="sep"></tr>
<tr><td><img src="/pic/rk.svg"><div style="float:left;">Alpha 720p</div></td></tr>
<tr class="expand-child"><td></td></tr>
</tbody></table>`

const pageB = `<table><tbody class="tbody_class">
<tr><td><div style="float:left;">Beta</div><a class="dlink_t no-pop" href="/dl/b1">dl</a></td></tr>
<tr class="expand-child"><td><div style="clear:both;">no resolution</div></td></tr>
</tbody></table>`

func newTestEngine(pages map[string]string) (*Engine, *fakeGetter, *monitoring.Metrics) {
	getter := &fakeGetter{pages: pages}
	metrics := monitoring.NewMetrics()
	e := NewEngine(getter, metrics, WithConcurrency(2))
	e.rnd = func() float64 { return 0.25 }
	return e, getter, metrics
}

func TestEngine_SearchURL(t *testing.T) {
	e, _, _ := newTestEngine(nil)
	assert.Equal(t,
		"https://top.lafa.site/ajax.php?rnd=0.25&action=quicksearch&keyword=enola+holmes",
		e.SearchURL("enola holmes"))
}

func TestEngine_Search(t *testing.T) {
	base := "https://top.lafa.site"
	e, getter, metrics := newTestEngine(map[string]string{
		base + "/ajax.php?rnd=0.25&action=quicksearch&keyword=alpha": quicksearch,
		base + "/film/a.htm": pageA,
		base + "/film/b.htm": pageB,
	})

	got, err := e.Search(context.Background(), "alpha", "movies")
	require.NoError(t, err)

	want := []schema.Record{
		{
			Link: base + "/dl/a1", Name: "Alpha 1080p (1920x1080)", Size: "1.5GB", Seeds: "5", Leech: "1",
			EngineURL: base, DescLink: base + "/film/a.htm", Extra: []string{"(1920x1080)"},
		},
		{
			Name: "Alpha 720p ADS", Seeds: "0", Leech: "0",
			EngineURL: base, DescLink: base + "/film/a.htm", Extra: []string{"ADS"},
		},
		{
			Link: base + "/dl/b1", Name: "Beta", Seeds: "0", Leech: "0",
			EngineURL: base, DescLink: base + "/film/b.htm", Extra: []string{},
		},
	}
	assert.Equal(t, want, got)

	assert.NotContains(t, getter.requests, base+"/film/skipped.htm")
	assert.Contains(t, getter.requests, base+"/film/missing.htm")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PagesParsed.WithLabelValues("lafa")))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.RecordsExtracted.WithLabelValues("lafa")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.IndexerErrors.WithLabelValues("lafa")))
}

func TestEngine_SearchFailure(t *testing.T) {
	e, _, metrics := newTestEngine(map[string]string{})

	_, err := e.Search(context.Background(), "nothing", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `quicksearch for "nothing"`)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.IndexerErrors.WithLabelValues("lafa")))
}

func TestEngine_SearchNoPages(t *testing.T) {
	e, _, _ := newTestEngine(map[string]string{
		"https://top.lafa.site/ajax.php?rnd=0.25&action=quicksearch&keyword=zzz": "<p>nothing found</p>",
	})

	got, err := e.Search(context.Background(), "zzz", "")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParsePage(t *testing.T) {
	got := ParsePage(parser.DefaultConfig(), "https://top.lafa.site/film/b.htm", pageB)

	require.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0].Name)
	assert.Equal(t, "https://top.lafa.site/film/b.htm", got[0].DescLink)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return b, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestEngine_SearchUsesTitleCache(t *testing.T) {
	base := "https://top.lafa.site"
	e, getter, _ := newTestEngine(map[string]string{
		base + "/ajax.php?rnd=0.25&action=quicksearch&keyword=beta": `<a href="/film/b.htm">B</a>`,
		base + "/film/b.htm": pageB,
	})
	titles := &memoryCache{data: map[string][]byte{}}
	WithTitleCache(titles)(e)

	first, err := e.Search(context.Background(), "beta", "")
	require.NoError(t, err)
	second, err := e.Search(context.Background(), "beta", "")
	require.NoError(t, err)
	// other casings are asked again, quicksearch may answer differently
	_, err = e.Search(context.Background(), "Beta", "")
	require.Error(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, `["/film/b.htm"]`, string(titles.data["lafa:titles:"+base+":beta"]))
	assert.NotContains(t, titles.data, "lafa:titles:"+base+":Beta")

	var quicksearches int
	for _, r := range getter.requests {
		if strings.Contains(r, "action=quicksearch") {
			quicksearches++
		}
	}
	assert.Equal(t, 2, quicksearches)
}

// expiringGetter is a fakeGetter that also drops cached pages.
type expiringGetter struct {
	*fakeGetter
	expired []string
}

func (g *expiringGetter) ExpireDocument(_ context.Context, url string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired = append(g.expired, url)
	return nil
}

func TestEngine_PageRecordsExpiresEmptyPages(t *testing.T) {
	base := "https://top.lafa.site"
	getter := &expiringGetter{fakeGetter: &fakeGetter{pages: map[string]string{
		base + "/film/b.htm":     pageB,
		base + "/film/empty.htm": `<html><body><p>no listings yet</p></body></html>`,
	}}}
	e := NewEngine(getter, monitoring.NewMetrics())

	got, err := e.PageRecords(context.Background(), base+"/film/empty.htm")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = e.PageRecords(context.Background(), base+"/film/b.htm")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.Equal(t, []string{base + "/film/empty.htm"}, getter.expired)
}
