package main

import (
	"fmt"
	"os"

	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/config"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/database"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/repository"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/searchindex"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/seed"
	"github.com/iyalarasuofficial/local-hire-platform-sub000/internal/services"
	"github.com/spf13/cobra"
)

var flagSeedConcurrency int

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Create demo accounts and worker profiles from a YAML fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&flagSeedConcurrency, "concurrency", 4, "Accounts created in parallel")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	fixture, err := seed.Load(file)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		return err
	}
	defer database.CloseDB()

	var indexer services.WorkerIndexer
	if cfg.ElasticsearchURL != "" {
		es, err := database.NewElasticsearchClient(ctx, cfg.ElasticsearchURL)
		if err != nil {
			return err
		}
		workerIndex := searchindex.NewWorkerIndex(es, cfg.WorkerIndex)
		if err := workerIndex.EnsureIndex(ctx); err != nil {
			return err
		}
		indexer = workerIndex
	}

	auth := services.NewAuthService(repository.NewUserRepository(database.DB), cfg.JWTSecret, cfg.AdminEmail, cfg.AdminPasswordHash)
	workers := services.NewWorkerService(repository.NewWorkerRepository(database.DB), indexer, nil, logger)

	result, err := seed.NewSeeder(auth, workers, flagSeedConcurrency, logger).Run(ctx, fixture)
	logger.Info("seed finished", "created", result.Created, "workers", result.Workers, "skipped", result.Skipped)
	return err
}
