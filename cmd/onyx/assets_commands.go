package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"onyx/internal/assetcache"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the local asset cache",
	}

	assetsCmd.AddCommand(newAssetsCacheCommand(ctx))
	assetsCmd.AddCommand(newAssetsResolveCommand(ctx))
	assetsCmd.AddCommand(newAssetsDeleteCommand(ctx))
	assetsCmd.AddCommand(newAssetsStatsCommand(ctx))
	assetsCmd.AddCommand(newAssetsClearCommand(ctx))

	return assetsCmd
}

func (c *commandContext) openAssetCache() (*assetcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return assetcache.New(cfg, c.newLogger(cfg))
}

func newAssetsCacheCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cache <entity-id> <asset-type> <url>",
		Short: "Fetch a remote asset into the cache",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openAssetCache()
			if err != nil {
				return err
			}
			locator, err := cache.Cache(cmd.Context(), args[2], args[0], args[1])
			if err != nil {
				return fmt.Errorf("cache asset (reference kept as %s): %w", locator, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), locator)
			return nil
		},
	}
}

func newAssetsResolveCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "resolve <locator>",
		Short: "Resolve a locator to its cached bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openAssetCache()
			if err != nil {
				return err
			}
			data, contentType, err := cache.Resolve(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(outPath) != "" {
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write asset: %w", err)
				}
				fmt.Fprintf(out, "Wrote %d bytes (%s) to %s\n", len(data), contentType, outPath)
				return nil
			}
			fmt.Fprintf(out, "%d bytes, %s\n", len(data), contentType)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the asset bytes to this file")
	return cmd
}

func newAssetsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity-id> <asset-type>",
		Short: "Delete a cached asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openAssetCache()
			if err != nil {
				return err
			}
			if err := cache.Delete(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s asset for %s\n", args[1], args[0])
			return nil
		},
	}
}

func newAssetsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show asset cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openAssetCache()
			if err != nil {
				return err
			}
			count, total, err := cache.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cached assets, %.1f MiB\n", count, float64(total)/(1<<20))
			return nil
		},
	}
}

func newAssetsClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("pass --force to clear the asset cache")
			}
			cache, err := ctx.openAssetCache()
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Asset cache cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing the cache")
	return cmd
}
