package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/schema"
	meilisearch "github.com/felipemarinho97/lafa-indexer/search"
)

// MeilisearchHandler handles HTTP requests for Meilisearch integration.
type MeilisearchHandler struct {
	Module *meilisearch.SearchIndexer
}

// NewMeilisearchHandler creates a new instance of MeilisearchHandler.
func NewMeilisearchHandler(module *meilisearch.SearchIndexer) *MeilisearchHandler {
	return &MeilisearchHandler{Module: module}
}

// IndexRecordHandler indexes a single record posted as JSON.
func (h *MeilisearchHandler) IndexRecordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var record schema.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if record.Name == "" {
		logging.WarnWithRequest(r).Msg("Rejected record without name")
		writeError(w, r, http.StatusBadRequest, "record name is required")
		return
	}
	if record.Extra == nil {
		record.Extra = []string{}
	}

	if err := h.Module.IndexRecord(r.Context(), record); err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to index record")
		writeError(w, r, http.StatusInternalServerError, "failed to index record")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": meilisearch.DocumentID(record)})
}

// SearchRecordHandler queries the index.
func (h *MeilisearchHandler) SearchRecordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limitStr := r.URL.Query().Get("limit")
	limit := 10 // Default limit
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			logging.WarnWithRequest(r).Str("limit", limitStr).Msg("Rejected search limit")
			writeError(w, r, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}

	results, err := h.Module.SearchRecords(r.Context(), query, limit)
	if err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to search records")
		writeError(w, r, http.StatusInternalServerError, "failed to search records")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Response{Results: results, Count: len(results)}); err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to encode response")
	}
}
