package meilisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/felipemarinho97/lafa-indexer/schema"
)

// SearchIndexer pushes scraped records to Meilisearch and queries them back.
type SearchIndexer struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	IndexName string
}

func NewSearchIndexer(baseURL, apiKey, indexName string) *SearchIndexer {
	return &SearchIndexer{
		Client:    &http.Client{Timeout: 10 * time.Second},
		BaseURL:   baseURL,
		APIKey:    apiKey,
		IndexName: indexName,
	}
}

// document is a record keyed by the hash of its download link, so the same
// listing seen on several pages is stored once.
type document struct {
	ID string `json:"id"`
	schema.Record
}

// DocumentID returns the Meilisearch primary key for r.
func DocumentID(r schema.Record) string {
	key := r.Link
	if key == "" {
		key = r.DescLink + "\x00" + r.Name
	}
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func (t *SearchIndexer) IndexRecord(ctx context.Context, record schema.Record) error {
	return t.IndexRecords(ctx, []schema.Record{record})
}

func (t *SearchIndexer) IndexRecords(ctx context.Context, records []schema.Record) error {
	docs := make([]document, 0, len(records))
	for _, r := range records {
		docs = append(docs, document{ID: DocumentID(r), Record: r})
	}

	jsonData, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/documents", t.BaseURL, t.IndexName)
	resp, err := t.post(ctx, url, jsonData)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("indexing failed with status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// SearchRecords runs query against the index.
func (t *SearchIndexer) SearchRecords(ctx context.Context, query string, limit int) ([]schema.Record, error) {
	jsonData, err := json.Marshal(map[string]any{
		"q":     query,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/search", t.BaseURL, t.IndexName)
	resp, err := t.post(ctx, url, jsonData)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search failed: %s", body)
	}

	var result struct {
		Hits []schema.Record `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return result.Hits, nil
}

func (t *SearchIndexer) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.APIKey))
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	return resp, nil
}
