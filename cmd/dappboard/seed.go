package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pscheid92/dappboard/internal/adapter/redis"
	"github.com/pscheid92/dappboard/internal/catalog"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/pscheid92/dappboard/internal/platform/retry"
	"github.com/spf13/cobra"
)

var seedAttempts int

// seedCmd pushes the embedded catalogs into Redis, replacing whatever is there.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the embedded feed catalogs into Redis",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedAttempts, "attempts", 5, "connection attempts before giving up")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.UsesRedis() {
		return errors.New("REDIS_URL must be set to seed catalogs")
	}

	seed, err := catalog.LoadSeed()
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts:    seedAttempts,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Seeding failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	ctx := cmd.Context()
	return retry.DoVoid(ctx, policy, classifySeedError, func(ctx context.Context) error {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		store := redis.NewCatalogStore(client)
		for _, name := range domain.Catalogs() {
			items, err := seed.Catalog(name)
			if err != nil {
				return err
			}
			if err := store.Replace(ctx, name, items); err != nil {
				return fmt.Errorf("failed to seed %s: %w", name, err)
			}
			slog.Info("Catalog seeded", "catalog", name, "items", len(items))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items\n", name, len(items))
		}
		return nil
	})
}

// classifySeedError retries connection and write failures. A catalog the seed does not
// know will never appear on retry.
func classifySeedError(err error) retry.Action {
	if errors.Is(err, domain.ErrCatalogNotFound) {
		return retry.Stop
	}
	return retry.Transient(err)
}
