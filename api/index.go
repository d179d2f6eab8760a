package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/felipemarinho97/lafa-indexer/consts"
	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/schema"
	meilisearch "github.com/felipemarinho97/lafa-indexer/search"
)

type Indexer struct {
	engine         *lafa.Engine
	search         *meilisearch.SearchIndexer
	postProcessors []PostProcessorFunc
}

// PostProcessorFunc transforms the records of a search before they are
// written to the response.
type PostProcessorFunc func(*Indexer, *http.Request, []schema.Record) []schema.Record

type Response struct {
	Results []schema.Record `json:"results"`
	Count   int             `json:"count"`
}

// NewIndexers wires the HTTP handlers to a search engine. search may be nil,
// in which case results are not forwarded to Meilisearch.
func NewIndexers(engine *lafa.Engine, search *meilisearch.SearchIndexer) *Indexer {
	return &Indexer{
		engine: engine,
		search: search,
		postProcessors: []PostProcessorFunc{
			CleanupTitleWebsites,
			AddSimilarityCheck,
			SendToSearchIndexer,
		},
	}
}

func HandlerIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"time":  time.Now().Format(time.RFC850),
		"build": consts.GetBuildInfo(),
		"endpoints": map[string]interface{}{
			"/indexers/lafa": map[string]interface{}{
				"method":      "GET",
				"description": "Search " + lafa.Meta.Name + " and return its listing records",
				"query_params": map[string]string{
					"q":              "search query",
					"category":       "one of all, anime, games, movies, music, software, tv (not used for filtering)",
					"filter_results": "drop records with zero similarity to q when there are many results",
				},
			},
			"/search": map[string]interface{}{
				"method":      "GET",
				"description": "Search previously indexed records",
				"query_params": map[string]string{
					"q":     "search query",
					"limit": "maximum number of results (default 10)",
				},
			},
			"/search/index": map[string]interface{}{
				"method":      "POST",
				"description": "Index a record",
			},
		},
	})
	if err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to encode index response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to encode error response")
	}
}
