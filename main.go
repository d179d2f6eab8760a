package main

import (
	"net/http"
	"os"

	handler "github.com/felipemarinho97/lafa-indexer/api"
	"github.com/felipemarinho97/lafa-indexer/cache"
	"github.com/felipemarinho97/lafa-indexer/config"
	"github.com/felipemarinho97/lafa-indexer/consts"
	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/monitoring"
	"github.com/felipemarinho97/lafa-indexer/parser"
	"github.com/felipemarinho97/lafa-indexer/requester"
	meilisearch "github.com/felipemarinho97/lafa-indexer/search"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ lafa.DocumentExpirer = (*requester.Requester)(nil)

func main() {
	logging.InitLogger(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	redis := cache.NewRedis(cfg.RedisAddr(), cfg.RedisPassword, cfg.LongLivedCacheExpiration)
	defer redis.Close()

	metrics := monitoring.NewMetrics()
	metrics.Register()

	var fs *requester.FlareSolverr
	if cfg.FlareSolverrAddress != "" {
		fs = requester.NewFlareSolverr(cfg.FlareSolverrAddress, 60000)
		logging.Info().Str("address", cfg.FlareSolverrAddress).Msg("Using FlareSolverr")
	}

	req := requester.NewRequester(fs, redis,
		requester.WithRequestsPerSecond(cfg.RequestsPerSecond),
		requester.WithShortLivedCacheExpiration(cfg.ShortLivedCacheExpiration),
		requester.WithMetrics(metrics),
	)

	engine := lafa.NewEngine(req, metrics,
		lafa.WithConfig(parser.DefaultConfig().WithBaseURL(cfg.LafaBaseURL)),
		lafa.WithConcurrency(cfg.PageConcurrency),
		lafa.WithTitleCache(redis),
	)

	indexerMux := http.NewServeMux()
	metricsMux := http.NewServeMux()

	var search *meilisearch.SearchIndexer
	if cfg.MeilisearchAddress != "" {
		search = meilisearch.NewSearchIndexer(cfg.MeilisearchAddress, cfg.MeilisearchKey, cfg.MeilisearchIndex)
		searchHandler := handler.NewMeilisearchHandler(search)
		indexerMux.HandleFunc("/search", searchHandler.SearchRecordHandler)
		indexerMux.HandleFunc("/search/index", searchHandler.IndexRecordHandler)
		logging.Info().Str("address", cfg.MeilisearchAddress).Str("index", cfg.MeilisearchIndex).Msg("Using Meilisearch")
	}

	indexers := handler.NewIndexers(engine, search)
	indexerMux.HandleFunc("/", handler.HandlerIndex)
	indexerMux.HandleFunc("/indexers/lafa", indexers.HandlerLafaIndexer)

	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		logging.Info().Str("port", cfg.MetricsPort).Msg("Starting metrics server")
		err := http.ListenAndServe(":"+cfg.MetricsPort, metricsMux)
		if err != nil {
			logging.Fatal().Err(err).Msg("Metrics server stopped")
		}
	}()

	logging.Info().Str("port", cfg.Port).Str("version", consts.Version()).Msg("Starting indexer server")
	err = http.ListenAndServe(":"+cfg.Port, logging.HTTPLoggingMiddleware(indexerMux))
	if err != nil {
		logging.Fatal().Err(err).Msg("Indexer server stopped")
	}
}
