package handler

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/felipemarinho97/lafa-indexer/logging"
	"github.com/felipemarinho97/lafa-indexer/schema"
	"github.com/felipemarinho97/lafa-indexer/utils"
	"github.com/hbollon/go-edlib"
)

// filterThreshold is the result count above which filter_results applies.
const filterThreshold = 20

// CleanupTitleWebsites strips known tracker signatures from record names.
func CleanupTitleWebsites(_ *Indexer, _ *http.Request, records []schema.Record) []schema.Record {
	for i := range records {
		records[i].Name = utils.RemoveKnownWebsites(records[i].Name)
	}
	return records
}

// SendToSearchIndexer forwards the records to Meilisearch in the background.
func SendToSearchIndexer(i *Indexer, _ *http.Request, records []schema.Record) []schema.Record {
	if i.search == nil || len(records) == 0 {
		return records
	}

	batch := slices.Clone(records)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := i.search.IndexRecords(ctx, batch); err != nil {
			logging.Warn().Err(err).Int("records", len(batch)).Msg("Failed to index records")
		}
	}()
	return records
}

// AddSimilarityCheck scores every record against q and orders the results by
// score. Without q the page order is kept.
func AddSimilarityCheck(_ *Indexer, r *http.Request, records []schema.Record) []schema.Record {
	q := r.URL.Query().Get("q")
	if q == "" {
		return records
	}

	qLower := strings.ToLower(q)
	for i, it := range records {
		name := strings.ReplaceAll(strings.ToLower(it.Name), ".", " ")
		splitLength := 2
		records[i].Similarity = edlib.JaccardSimilarity(name, qLower, splitLength)
	}

	// remove the ones with zero similarity
	if len(records) > filterThreshold && r.URL.Query().Get("filter_results") != "" {
		records = utils.Filter(records, func(it schema.Record) bool {
			return it.Similarity > 0
		})
	}

	slices.SortStableFunc(records, func(a, b schema.Record) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})

	return records
}
