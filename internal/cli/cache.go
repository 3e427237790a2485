package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached clouds and artifacts",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached cloud and artifact",
		Long: `Remove every cached cloud and artifact from the configured backend.

For the file backend this empties the cache directory. For Redis it deletes
the keys under the configured prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cfg()

			store, err := c.openCache(ctx)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Caching is disabled, nothing to clear")
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cache cleared")
			printDetail("%s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cache entries are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, redis://addr/db with the key prefix for Redis.
func (c *CLI) cacheLocation() string {
	cfg := c.cfg().Cache
	switch cfg.Backend {
	case config.BackendNone:
		return "(disabled)"
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s*", cfg.RedisAddr, cfg.RedisDB, cfg.Prefix)
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return "(unknown)"
		}
		return dir
	}
}
