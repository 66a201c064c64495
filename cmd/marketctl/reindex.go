package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/database"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/discovery"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/searchindex"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Elasticsearch worker index from PostgreSQL",
	Args:  cobra.NoArgs,
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.ElasticsearchURL == "" {
		return errors.New("ELASTICSEARCH_URL is required for reindex")
	}

	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		return err
	}
	defer database.CloseDB()

	es, err := database.NewElasticsearchClient(ctx, cfg.ElasticsearchURL)
	if err != nil {
		return err
	}
	workerIndex := searchindex.NewWorkerIndex(es, cfg.WorkerIndex)
	if err := workerIndex.EnsureIndex(ctx); err != nil {
		return err
	}

	workerRepo := repository.NewWorkerRepository(database.DB)
	workers, err := workerRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list workers: %w", err)
	}
	if err := workerIndex.BulkIndex(ctx, workers); err != nil {
		return err
	}

	parity, err := compareDiscoverable(ctx, workerRepo, workerIndex)
	if err != nil {
		return err
	}
	if !parity.Matches() {
		// Documents for deleted workers are never removed by a bulk upsert.
		logger.Warn("index drift after reindex", "index", cfg.WorkerIndex,
			"database", parity.Database, "index_count", parity.Index)
	}

	logger.Info("reindex finished", "index", cfg.WorkerIndex, "workers", len(workers),
		"discoverable", parity.Database)
	return nil
}

type indexParity struct {
	Database int
	Index    int
}

func (p indexParity) Matches() bool { return p.Database == p.Index }

// compareDiscoverable counts discoverable workers in both directories.
func compareDiscoverable(ctx context.Context, source, index discovery.Directory) (indexParity, error) {
	var parity indexParity
	var err error

	if parity.Database, err = source.Count(ctx, discovery.Filter{}); err != nil {
		return parity, fmt.Errorf("count database workers: %w", err)
	}
	if parity.Index, err = index.Count(ctx, discovery.Filter{}); err != nil {
		return parity, fmt.Errorf("count indexed workers: %w", err)
	}
	return parity, nil
}
