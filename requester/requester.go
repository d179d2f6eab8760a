package requester

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/felipemarinho97/lafa-indexer/cache"
	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/felipemarinho97/lafa-indexer/utils"
	"golang.org/x/time/rate"
)

var challengeRegex = regexp.MustCompile(`(?i)(just a moment|cf-chl-bypass|under attack|ddos-guard)`)

// Requester fetches pages for the indexers. Full HTML pages are kept in a
// short-lived redis cache and requests to the site are paced by a token
// bucket. When a challenge page comes back and a FlareSolverr instance is
// configured, the page is fetched again through it.
type Requester struct {
	fs                        *FlareSolverr
	c                         *cache.Redis
	httpClient                *http.Client
	limiter                   *rate.Limiter
	shortLivedCacheExpiration time.Duration
	metrics                   *monitoring.Metrics
}

// Option configures a Requester.
type Option func(*Requester)

// WithRequestsPerSecond paces outgoing requests. Zero or less disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(r *Requester) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithShortLivedCacheExpiration(expiration time.Duration) Option {
	return func(r *Requester) {
		r.shortLivedCacheExpiration = expiration
	}
}

// WithMetrics counts page cache hits and misses.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Requester) {
		r.metrics = m
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Requester) {
		r.httpClient = c
	}
}

// NewRequester returns a Requester. fs and c may be nil to run without
// challenge solving or caching.
func NewRequester(fs *FlareSolverr, c *cache.Redis, opts ...Option) *Requester {
	r := &Requester{
		fs: fs,
		c:  c,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		limiter:                   rate.NewLimiter(rate.Inf, 1),
		shortLivedCacheExpiration: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func cacheKey(url string) string {
	return fmt.Sprintf("%s:%s", cache.PageKeyPrefix, url)
}

// GetDocument returns the body of url. The optional referer is sent as the
// Referer header.
func (r *Requester) GetDocument(ctx context.Context, url string, referer ...string) (io.ReadCloser, error) {
	ref := ""
	if len(referer) > 0 {
		ref = referer[0]
	}

	key := cacheKey(url)
	if r.c != nil {
		if body, err := r.c.Get(ctx, key); err == nil {
			logging.Debug().Str("url", url).Msg("Returning from short-lived cache")
			r.countCache(true)
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.countCache(false)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for url %s: %w", url, err)
	}

	body, err := r.fetch(ctx, url, ref)
	if err != nil {
		if r.fs == nil {
			return nil, err
		}
		logging.Warn().Err(err).Str("url", url).Msg("Plain request failed, trying flaresolverr")
		if body, err = r.solve(ctx, url); err != nil {
			return nil, err
		}
	} else if hasChallenge(body) {
		if r.fs == nil {
			return nil, fmt.Errorf("response for url %s is a challenge", url)
		}
		if body, err = r.solve(ctx, url); err != nil {
			return nil, err
		}
	} else {
		logging.Debug().Str("url", url).Msg("Request served from plain client")
	}

	if hasChallenge(body) {
		return nil, fmt.Errorf("response for url %s is a challenge", url)
	}

	// fragments such as quicksearch answers are served but never cached
	if r.c != nil && len(body) > 0 && utils.IsValidHTML(string(body)) {
		if err := r.c.SetWithExpiration(ctx, key, body, r.shortLivedCacheExpiration); err != nil {
			logging.Error().Err(err).Str("url", url).Msg("Failed to save response to cache")
		} else {
			logging.Debug().Str("url", url).Msg("Saved to cache")
		}
	}

	return io.NopCloser(bytes.NewReader(body)), nil
}

func (r *Requester) countCache(hit bool) {
	if r.metrics == nil {
		return
	}
	if hit {
		r.metrics.CacheHits.WithLabelValues("page").Inc()
	} else {
		r.metrics.CacheMisses.WithLabelValues("page").Inc()
	}
}

func (r *Requester) fetch(ctx context.Context, url, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	spoofBrowserHeaders(req, referer)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request for url %s: %w", url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	} else {
		buf.Grow(32 * 1024)
	}
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body for url %s: %w", url, err)
	}

	// challenge pages come back as 403/503, let the caller inspect them
	if resp.StatusCode != http.StatusOK && !hasChallenge(buf.Bytes()) {
		return nil, fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, url)
	}
	return buf.Bytes(), nil
}

func (r *Requester) solve(ctx context.Context, url string) ([]byte, error) {
	rc, err := r.fs.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("flaresolverr request for url %s: %w", url, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read flaresolverr body: %w", err)
	}
	logging.Debug().Str("url", url).Msg("Request served from flaresolverr")
	return body, nil
}

// ExpireDocument drops url from the short-lived cache.
func (r *Requester) ExpireDocument(ctx context.Context, url string) error {
	if r.c == nil {
		return nil
	}
	return r.c.Del(ctx, cacheKey(url))
}

func hasChallenge(body []byte) bool {
	return challengeRegex.Match(body)
}
