// Package searchindex keeps an Elasticsearch copy of the worker directory and
// answers discovery queries from it.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/discovery"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/models"
)

// maxResultWindow is the default index.max_result_window.
const maxResultWindow = 10000

const workerMapping = `{
  "mappings": {
    "properties": {
      "id":              { "type": "keyword" },
      "user_id":         { "type": "keyword" },
      "name":            { "type": "keyword" },
      "skills":          { "type": "keyword" },
      "bio":             { "type": "keyword" },
      "address":         { "type": "keyword" },
      "geo":             { "type": "geo_point" },
      "has_location":    { "type": "boolean" },
      "location":        { "type": "object", "enabled": false },
      "charge":          { "type": "float" },
      "is_available":    { "type": "boolean" },
      "is_blocked":      { "type": "boolean" },
      "average_rating":  { "type": "float" },
      "rating_count":    { "type": "integer" },
      "max_distance_km": { "type": "float" },
      "created_at":      { "type": "date" },
      "updated_at":      { "type": "date" }
    }
  }
}`

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// workerDocument is the indexed form of a worker. Sentinel workers carry no
// geo point so geo queries never match them.
type workerDocument struct {
	models.Worker
	Geo         *geoPoint `json:"geo,omitempty"`
	HasLocation bool      `json:"has_location"`
}

func newWorkerDocument(worker models.Worker) workerDocument {
	doc := workerDocument{Worker: worker}
	if !worker.Location.IsSentinel() {
		doc.HasLocation = true
		doc.Geo = &geoPoint{Lat: worker.Location.Latitude(), Lon: worker.Location.Longitude()}
	}
	return doc
}

type WorkerIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewWorkerIndex(client *elasticsearch.Client, index string) *WorkerIndex {
	return &WorkerIndex{client: client, index: index}
}

// EnsureIndex creates the index with the worker mapping unless it exists.
func (w *WorkerIndex) EnsureIndex(ctx context.Context) error {
	res, err := w.client.Indices.Exists([]string{w.index}, w.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = w.client.Indices.Create(
		w.index,
		w.client.Indices.Create.WithBody(strings.NewReader(workerMapping)),
		w.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

// IndexWorker upserts a single worker document.
func (w *WorkerIndex) IndexWorker(ctx context.Context, worker models.Worker) error {
	body, err := json.Marshal(newWorkerDocument(worker))
	if err != nil {
		return fmt.Errorf("marshal worker: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      w.index,
		DocumentID: worker.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}
	res, err := req.Do(ctx, w.client)
	if err != nil {
		return fmt.Errorf("index worker: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index worker", res)
	}
	return nil
}

// BulkIndex upserts workers in one bulk request.
func (w *WorkerIndex) BulkIndex(ctx context.Context, workers []models.Worker) error {
	if len(workers) == 0 {
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, worker := range workers {
		meta := map[string]any{
			"index": map[string]any{
				"_index": w.index,
				"_id":    worker.ID,
			},
		}
		if err := encoder.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := encoder.Encode(newWorkerDocument(worker)); err != nil {
			return fmt.Errorf("encode worker: %w", err)
		}
	}

	res, err := w.client.Bulk(
		&buf,
		w.client.Bulk.WithContext(ctx),
		w.client.Bulk.WithIndex(w.index),
		w.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("bulk index", res)
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if result.Errors {
		for _, item := range result.Items {
			for _, outcome := range item {
				if len(outcome.Error) > 0 {
					return fmt.Errorf("bulk index worker %s: %s", outcome.ID, outcome.Error)
				}
			}
		}
		return fmt.Errorf("bulk index reported errors")
	}
	return nil
}

// FindMatching implements discovery.Directory.
func (w *WorkerIndex) FindMatching(ctx context.Context, filter discovery.Filter, opts discovery.FindOptions) ([]models.Worker, error) {
	body, err := json.Marshal(buildSearchBody(filter, opts))
	if err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := w.client.Search(
		w.client.Search.WithContext(ctx),
		w.client.Search.WithIndex(w.index),
		w.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search workers: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("search workers", res)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source workerDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	workers := make([]models.Worker, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		workers = append(workers, hit.Source.Worker)
	}
	return workers, nil
}

// Count implements discovery.Directory.
func (w *WorkerIndex) Count(ctx context.Context, filter discovery.Filter) (int, error) {
	body, err := json.Marshal(map[string]any{"query": buildQuery(filter)})
	if err != nil {
		return 0, fmt.Errorf("encode count: %w", err)
	}

	res, err := w.client.Count(
		w.client.Count.WithContext(ctx),
		w.client.Count.WithIndex(w.index),
		w.client.Count.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return 0, fmt.Errorf("count workers: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, responseError("count workers", res)
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return result.Count, nil
}

func buildSearchBody(filter discovery.Filter, opts discovery.FindOptions) map[string]any {
	size := opts.Limit
	if size <= 0 || size > maxResultWindow {
		size = maxResultWindow
	}

	body := map[string]any{
		"query": buildQuery(filter),
		"size":  size,
	}
	if filter.Near != nil {
		body["sort"] = []any{
			map[string]any{
				"_geo_distance": map[string]any{
					"geo":   originPoint(filter.Near.Origin),
					"order": "asc",
					"unit":  "m",
				},
			},
			map[string]any{"id": "asc"},
		}
	}
	return body
}

func buildQuery(filter discovery.Filter) map[string]any {
	clauses := []any{
		map[string]any{"term": map[string]any{"is_available": true}},
		map[string]any{"term": map[string]any{"is_blocked": false}},
	}

	switch filter.Scope {
	case discovery.PlacedOnly:
		clauses = append(clauses, map[string]any{"term": map[string]any{"has_location": true}})
	case discovery.SentinelOnly:
		clauses = append(clauses, map[string]any{"term": map[string]any{"has_location": false}})
	}

	if len(filter.Categories) > 0 {
		should := make([]any, 0, len(filter.Categories))
		for _, category := range filter.Categories {
			should = append(should, containsQuery("skills", category))
		}
		clauses = append(clauses, anyOf(should))
	}

	if filter.FreeText != "" {
		should := make([]any, 0, 4)
		for _, field := range []string{"skills", "bio", "name", "address"} {
			should = append(should, containsQuery(field, filter.FreeText))
		}
		clauses = append(clauses, anyOf(should))
	}

	if filter.AddressText != "" {
		clauses = append(clauses, containsQuery("address", filter.AddressText))
	}

	if filter.Near != nil {
		clauses = append(clauses, map[string]any{
			"geo_distance": map[string]any{
				"distance": fmt.Sprintf("%fm", filter.Near.RadiusMeters),
				"geo":      originPoint(filter.Near.Origin),
			},
		})
	}

	return map[string]any{
		"bool": map[string]any{"filter": clauses},
	}
}

func anyOf(should []any) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func containsQuery(field, value string) map[string]any {
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{
				"value":            "*" + wildcardEscaper.Replace(value) + "*",
				"case_insensitive": true,
			},
		},
	}
}

func originPoint(origin discovery.Coordinates) geoPoint {
	return geoPoint{Lat: origin.Latitude, Lon: origin.Longitude}
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: status %d: %s", op, res.StatusCode, strings.TrimSpace(string(body)))
}
