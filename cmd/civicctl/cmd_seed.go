package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	authservice "civicfund/internal/auth/service"
	userstore "civicfund/internal/auth/store/user"
	blogstore "civicfund/internal/blog/store"
	campaignstore "civicfund/internal/campaign/store"
	donationstore "civicfund/internal/donation/store"
	"civicfund/internal/fixtures"
	"civicfund/internal/platform/config"
	"civicfund/internal/platform/logger"
	"civicfund/internal/platform/postgres"
	registrationstore "civicfund/internal/registration/store"
)

var seedDryRun bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset into the configured databases",
	Long: `Seed writes the embedded demo accounts, campaigns, registrations,
donations and blog posts into PostgreSQL (CIVICFUND_DATABASE_URL) and the
SQLite blog store (CIVICFUND_BLOG_DB_PATH). Existing records are skipped.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "validate the dataset without writing")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ds, err := fixtures.Load()
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	if seedDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "dataset ok: %d accounts, %d campaigns, %d registrations, %d donations, %d posts\n",
			len(ds.Accounts), len(ds.Campaigns), len(ds.Registrations), len(ds.Donations), len(ds.Posts))
		return nil
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" && cfg.Blog.DBPath == "" {
		return errors.New("nothing to seed: set CIVICFUND_DATABASE_URL or CIVICFUND_BLOG_DB_PATH")
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	stores, closeStores, err := openSeedStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	hasher := authservice.New(nil, nil, nil, authservice.WithBcryptCost(cfg.Auth.BcryptCost))
	result, err := fixtures.Seed(ctx, ds, stores, hasher, time.Now(), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d campaigns, %d registrations, %d donations, %d posts (%d skipped)\n",
		result.Users, result.Campaigns, result.Registrations, result.Donations, result.Posts, result.Skipped)
	return nil
}

func openSeedStores(ctx context.Context, cfg config.Config, log *slog.Logger) (fixtures.Stores, func(), error) {
	var stores fixtures.Stores
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Database.URL, MaxOpenConns: 2, MaxIdleConns: 1})
		if err != nil {
			return stores, nil, fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			closeAll()
			return stores, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		stores.Users = userstore.NewPostgres(db)
		stores.Campaigns = campaignstore.NewPostgres(db)
		stores.Registrations = registrationstore.NewPostgres(db)
		stores.Donations = donationstore.NewPostgres(db)
	}
	if cfg.Blog.DBPath != "" {
		posts, err := blogstore.OpenSQLite(ctx, cfg.Blog.DBPath)
		if err != nil {
			closeAll()
			return stores, nil, fmt.Errorf("open blog database: %w", err)
		}
		closers = append(closers, posts.Close)
		stores.Posts = posts
	}
	return stores, closeAll, nil
}
