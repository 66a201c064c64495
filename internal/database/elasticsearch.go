package database

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewElasticsearchClient builds a client for url and checks that the cluster
// answers.
func NewElasticsearchClient(ctx context.Context, url string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: status %d", res.StatusCode)
	}
	return client, nil
}
