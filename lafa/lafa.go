// Package lafa searches top.lafa.site: it asks the quicksearch endpoint for
// matching title pages, then scrapes the listing table of every page.
package lafa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/felipemarinho97/lafa-indexer/cache"
	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/felipemarinho97/lafa-indexer/parser"
	"github.com/felipemarinho97/lafa-indexer/schema"
	"github.com/felipemarinho97/lafa-indexer/utils"
)

// Meta describes the site the way search plugins do.
var Meta = struct {
	Label      string
	Name       string
	Categories map[string]string
}{
	Label: "lafa",
	Name:  "top.lafa.site",
	Categories: map[string]string{
		"all":      "0",
		"anime":    "7",
		"games":    "2",
		"movies":   "6",
		"music":    "1",
		"software": "3",
		"tv":       "4",
	},
}

const quicksearchPattern = "%s/ajax.php?rnd=%v&action=quicksearch&keyword=%s"

// DocumentGetter fetches a page body.
type DocumentGetter interface {
	GetDocument(ctx context.Context, url string, referer ...string) (io.ReadCloser, error)
}

// DocumentExpirer is implemented by getters that cache pages. Title pages
// without any listing are expired so the next search fetches them again.
type DocumentExpirer interface {
	ExpireDocument(ctx context.Context, url string) error
}

// TitleCache remembers which title pages a query leads to.
type TitleCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Engine struct {
	getter      DocumentGetter
	titles      TitleCache
	metrics     *monitoring.Metrics
	cfg         parser.Config
	concurrency int
	rnd         func() float64
}

type Option func(*Engine)

// WithConfig replaces the markup configuration. Its BaseURL is also the site
// root used to build request URLs.
func WithConfig(cfg parser.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithConcurrency bounds how many title pages are fetched at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithTitleCache stores quicksearch answers in c.
func WithTitleCache(c TitleCache) Option {
	return func(e *Engine) { e.titles = c }
}

func NewEngine(getter DocumentGetter, metrics *monitoring.Metrics, opts ...Option) *Engine {
	e := &Engine{
		getter:      getter,
		metrics:     metrics,
		cfg:         parser.DefaultConfig(),
		concurrency: 4,
		rnd:         rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchURL returns the quicksearch URL for an unescaped query.
func (e *Engine) SearchURL(what string) string {
	return fmt.Sprintf(quicksearchPattern, e.cfg.BaseURL, e.rnd(), url.QueryEscape(what))
}

// Search returns the records of every title page matching what, grouped by
// page in quicksearch order. The site has no category filter, cat is only
// validated and logged.
func (e *Engine) Search(ctx context.Context, what, cat string) ([]schema.Record, error) {
	logger := logging.Indexer(Meta.Label)
	start := time.Now()
	defer func() {
		e.metrics.IndexerDuration.WithLabelValues(Meta.Label).Observe(time.Since(start).Seconds())
		e.metrics.IndexerRequests.WithLabelValues(Meta.Label).Inc()
	}()

	if cat != "" {
		if _, ok := Meta.Categories[cat]; !ok {
			logger.Warn().Str("category", cat).Msg("Unknown category")
		} else {
			logger.Debug().Str("category", cat).Msg("Search by category is not supported, searching all")
		}
	}

	paths, err := e.titlePaths(ctx, what)
	if err != nil {
		e.metrics.IndexerErrors.WithLabelValues(Meta.Label).Inc()
		return nil, fmt.Errorf("quicksearch for %q: %w", what, err)
	}

	pages := make([]string, 0, len(paths))
	for _, p := range paths {
		pages = append(pages, e.cfg.BaseURL+p)
	}
	logger.Debug().Int("pages", len(pages)).Msg("Quicksearch returned title pages")

	records, errs := utils.ParallelMap(pages, e.concurrency, func(page string) ([]schema.Record, error) {
		return e.PageRecords(ctx, page)
	})
	for _, err := range errs {
		e.metrics.IndexerErrors.WithLabelValues(Meta.Label).Inc()
		logger.Warn().Err(err).Msg("Skipping title page")
	}
	if records == nil {
		records = []schema.Record{}
	}
	return records, nil
}

// titlePaths returns the title page paths quicksearch answers for what.
func (e *Engine) titlePaths(ctx context.Context, what string) ([]string, error) {
	key := fmt.Sprintf("%s:%s:%s", cache.TitlesKeyPrefix, e.cfg.BaseURL, what)
	if e.titles != nil {
		if b, err := e.titles.Get(ctx, key); err == nil {
			var paths []string
			if err := json.Unmarshal(b, &paths); err == nil {
				logging.Debug().Str("query", what).Msg("Title pages served from cache")
				return paths, nil
			}
		}
	}

	searchURL := e.SearchURL(what)
	logging.Info().Str("indexer", Meta.Label).Str("url", searchURL).Msg("Searching")
	body, err := e.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	paths := parser.NewLinkExtractor().GetResults(body)

	// empty answers are not cached
	if e.titles != nil && len(paths) > 0 {
		b, err := json.Marshal(paths)
		if err == nil {
			err = e.titles.Set(ctx, key, b)
		}
		if err != nil {
			logging.Warn().Err(err).Str("query", what).Msg("Failed to cache title pages")
		}
	}
	return paths, nil
}

// PageRecords scrapes the listing table of one title page.
func (e *Engine) PageRecords(ctx context.Context, pageURL string) ([]schema.Record, error) {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}

	records := ParsePage(e.cfg, pageURL, body)
	if len(records) == 0 {
		if expirer, ok := e.getter.(DocumentExpirer); ok {
			if err := expirer.ExpireDocument(ctx, pageURL); err != nil {
				logging.Warn().Err(err).Str("url", pageURL).Msg("Failed to expire empty title page")
			} else {
				logging.Debug().Str("url", pageURL).Msg("Expired empty title page")
			}
		}
	}
	e.metrics.PagesParsed.WithLabelValues(Meta.Label).Inc()
	e.metrics.RecordsExtracted.WithLabelValues(Meta.Label).Add(float64(len(records)))
	return records, nil
}

// ParsePage extracts the records of a title page and decorates them for
// display: DescLink points back at the page and annotations are appended to
// the name.
func ParsePage(cfg parser.Config, pageURL, document string) []schema.Record {
	records := parser.NewRecordTableExtractor(cfg).GetResults(document)
	for i := range records {
		records[i].DescLink = pageURL
		if len(records[i].Extra) > 0 {
			records[i].Name += " " + strings.Join(records[i].Extra, " ")
		}
	}
	return records
}

func (e *Engine) fetch(ctx context.Context, url string) (string, error) {
	rc, err := e.getter.GetDocument(ctx, url, e.cfg.BaseURL+"/")
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}
	return string(b), nil
}
