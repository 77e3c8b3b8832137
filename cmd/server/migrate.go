package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
	"github.com/kpvarma/ecoas-forge-sub000/internal/database"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

var errMemoryBackend = errors.New("STORE_BACKEND=memory keeps nothing; set STORE_BACKEND=database")

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogging(cfg.Log, cmd.ErrOrStderr())
			if cfg.Store.Backend == config.StoreMemory {
				return errMemoryBackend
			}

			db, err := database.New(&cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()
			return database.Migrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		size      int
		seed      int64
		withFiles bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load generated demo data into the database",
		Long: `seed generates users, templates, responsibilities and request envelopes
and writes them to the database. Records that already exist are skipped, so
running it twice with the same --seed is harmless.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			setupLogging(cfg.Log, cmd.ErrOrStderr())
			if cfg.Store.Backend == config.StoreMemory {
				return errMemoryBackend
			}
			if !cmd.Flags().Changed("size") {
				size = cfg.Store.MockSize
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Store.MockSeed
			}

			stores, db, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			manager, err := newManager(cmd.Context(), cfg, stores)
			if err != nil {
				return err
			}
			ds := mockdata.New(seed, time.Now()).Dataset(size)
			report, err := manager.Seed(cmd.Context(), ds, withFiles)
			if err != nil {
				return err
			}
			slog.Info("seed finished", "size", size, "seed", seed)
			renderSeedReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 40, "number of request envelopes")
	cmd.Flags().Int64Var(&seed, "seed", 2024, "generator seed")
	cmd.Flags().BoolVar(&withFiles, "files", false, "also store template XML and sample CoA PDFs")
	return cmd
}
