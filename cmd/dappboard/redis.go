package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pscheid92/dappboard/internal/adapter/redis"
	"github.com/pscheid92/dappboard/internal/domain"
	"github.com/spf13/cobra"
)

// redisCmd groups Redis-related subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

// pingCmd checks the configured Redis server and reports catalog sizes.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and print catalog sizes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.UsesRedis() {
			return errors.New("REDIS_URL is not set")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		fmt.Fprintln(cmd.OutOrStdout(), "PONG")

		store := redis.NewCatalogStore(client)
		for _, name := range domain.Catalogs() {
			n, err := store.Len(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d items\n", name, n)
		}
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(redisCmd)
}
