package handler

import (
	"encoding/json"
	"net/http"

	"github.com/felipemarinho97/lafa-indexer/lafa"
	"github.com/felipemarinho97/lafa-indexer/logging"
)

func (i *Indexer) HandlerLafaIndexer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// supported query params: q, category, filter_results
	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	logging.DebugWithRequest(r).Str("indexer", lafa.Meta.Label).Str("q", q).Msg("Search requested")
	records, err := i.engine.Search(r.Context(), q, category)
	if err != nil {
		logging.ErrorWithRequest(r).Err(err).Str("indexer", lafa.Meta.Label).Msg("Search failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	for _, processor := range i.postProcessors {
		records = processor(i, r, records)
	}

	logging.InfoWithRequest(r).Str("indexer", lafa.Meta.Label).Int("count", len(records)).Msg("Search finished")

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(Response{
		Results: records,
		Count:   len(records),
	})
	if err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to encode response")
	}
}
