package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/crisislens/analyzer/internal/domain"
)

const defaultIndex = "analysis_records"

// Indexer mirrors analysis records into Elasticsearch for search and
// dashboards. Indexing is best effort and sits beside the primary store, not
// in front of it.
type Indexer struct {
	client *es.Client
	index  string
}

// NewIndexer creates an indexer against the given Elasticsearch URL and
// verifies the connection.
func NewIndexer(ctx context.Context, url, index string) (*Indexer, error) {
	if index == "" {
		index = defaultIndex
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("storage: create elasticsearch client: %w", err)
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("storage: elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("storage: elasticsearch ping: %s", res.Status())
	}

	return &Indexer{client: client, index: index}, nil
}

// Index writes one record, keyed by document id so reindexing is idempotent.
func (ix *Indexer) Index(ctx context.Context, record *domain.AnalysisRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: marshal record: %w", err)
	}

	res, err := ix.client.Index(
		ix.index,
		bytes.NewReader(doc),
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(record.DocumentID),
	)
	if err != nil {
		return fmt.Errorf("storage: index record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("storage: index record: %s", res.String())
	}
	return nil
}
