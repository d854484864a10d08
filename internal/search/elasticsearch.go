// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/goccy/go-json"

	"github.com/tomtom215/digestrec/internal/breaker"
	"github.com/tomtom215/digestrec/internal/metrics"
)

const (
	DefaultElasticsearchURL = "http://127.0.0.1:9200"
	DefaultIndex            = "arxivdigest_papers"

	// maxHits is the largest result window Elasticsearch serves by default.
	maxHits = 10000
)

// ElasticsearchOptions configures an Elasticsearch searcher.
type ElasticsearchOptions struct {
	URL   string
	Index string

	// Timeout bounds the wait for response headers. Ignored when Transport
	// is set.
	Timeout time.Duration

	// Transport carries requests to the cluster. nil uses a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper

	// Breaker wraps every round trip, bulk flushes included.
	Breaker *breaker.Breaker[*http.Response]
}

// Elasticsearch is a Searcher backed by the official Elasticsearch client.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearch creates a searcher for one index.
func NewElasticsearch(opts ElasticsearchOptions) (*Elasticsearch, error) {
	addr := strings.TrimRight(opts.URL, "/")
	if addr == "" {
		addr = DefaultElasticsearchURL
	}
	index := opts.Index
	if index == "" {
		index = DefaultIndex
	}

	next := opts.Transport
	if next == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = timeout
		next = t
	}
	b := opts.Breaker
	if b == nil {
		b = breaker.New[*http.Response]("elasticsearch", breaker.Settings{
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
		})
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Transport: &breakerTransport{next: next, breaker: b},
		// The breaker decides when to stop calling a failing cluster.
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Elasticsearch{client: client, index: index}, nil
}

// Name implements Searcher.
func (es *Elasticsearch) Name() string { return "elasticsearch" }

// EnsureIndex creates the index with a single shard and no replicas.
func (es *Elasticsearch) EnsureIndex(ctx context.Context) (err error) {
	defer func() { metrics.RecordSearch(es.Name(), "ensure_index", err) }()

	res, err := es.client.Indices.Exists([]string{es.index}, es.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.index, err)
	}
	drain(res)
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: HTTP %d", es.index, res.StatusCode)
	}

	body := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title":         map[string]any{"type": "text"},
				"abstract":      map[string]any{"type": "text"},
				"fieldsOfStudy": map[string]any{"type": "text"},
				"topics":        map[string]any{"type": "text"},
				"date":          map[string]any{"type": "date"},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode index settings: %w", err)
	}

	res, err = es.client.Indices.Create(es.index,
		es.client.Indices.Create.WithContext(ctx),
		es.client.Indices.Create.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", es.index, err)
	}
	data := readBody(res)
	switch {
	case !res.IsError():
		return nil
	case res.StatusCode == http.StatusBadRequest && bytes.Contains(data, []byte("resource_already_exists_exception")):
		return nil
	default:
		return fmt.Errorf("create index %s: HTTP %d: %s", es.index, res.StatusCode, data)
	}
}

// Index writes docs with a bulk indexer and waits for them to become
// searchable.
func (es *Elasticsearch) Index(ctx context.Context, docs []Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	defer func() { metrics.RecordSearch(es.Name(), "index", err) }()

	var (
		mu       sync.Mutex
		flushErr error
		failures []string
	)
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     es.client,
		Index:      es.index,
		NumWorkers: 1,
		Refresh:    "wait_for",
		OnError: func(_ context.Context, err error) {
			mu.Lock()
			defer mu.Unlock()
			if flushErr == nil {
				flushErr = err
			}
		},
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	onFailure := func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
		reason := res.Error.Reason
		if err != nil {
			reason = err.Error()
		}
		mu.Lock()
		failures = append(failures, item.DocumentID+": "+reason)
		mu.Unlock()
	}

	for _, d := range docs {
		source, err := json.Marshal(d)
		if err != nil {
			_ = bi.Close(ctx)
			return fmt.Errorf("encode document %s: %w", d.ID, err)
		}
		if err := bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: d.ID,
			Body:       bytes.NewReader(source),
			OnFailure:  onFailure,
		}); err != nil {
			_ = bi.Close(ctx)
			return fmt.Errorf("queue document %s: %w", d.ID, err)
		}
	}
	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush bulk indexer: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if flushErr != nil {
		return fmt.Errorf("bulk index: %w", flushErr)
	}
	if len(failures) > 0 {
		return fmt.Errorf("bulk index: %d of %d documents failed (%s)", len(failures), len(docs), failures[0])
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs topic as a simple_query_string over documents dated within
// the last seven days.
func (es *Elasticsearch) Search(ctx context.Context, topic string) (hits []Hit, err error) {
	defer func() { metrics.RecordSearch(es.Name(), "search", err) }()

	payload, err := json.Marshal(searchQuery(topic))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := es.client.Search(
		es.client.Search.WithContext(ctx),
		es.client.Search.WithIndex(es.index),
		es.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	data := readBody(res)
	if res.IsError() {
		return nil, fmt.Errorf("search %q: HTTP %d: %s", topic, res.StatusCode, data)
	}

	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits = make([]Hit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func searchQuery(topic string) map[string]any {
	return map[string]any{
		"size":    maxHits,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"simple_query_string": map[string]any{"query": topic}},
				},
				"filter": map[string]any{
					"range": map[string]any{"date": map[string]any{"gte": "now-7d"}},
				},
			},
		},
	}
}

// breakerTransport runs each round trip through the breaker. 5xx responses
// count as failures.
type breakerTransport struct {
	next    http.RoundTripper
	breaker *breaker.Breaker[*http.Response]
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.breaker.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			defer resp.Body.Close()
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return nil, fmt.Errorf("%s %s: HTTP %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
		}
		return resp, nil
	})
}

func readBody(res *esapi.Response) []byte {
	if res.Body == nil {
		return nil
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<20))
	return data
}

func drain(res *esapi.Response) {
	if res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
