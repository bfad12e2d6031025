package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"onyx/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigShowCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the steamgrid api_key before running a metadata scan.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path:     %s (exists: %s)\n", path, yesNo(exists))
			fmt.Fprintf(out, "Data dir:        %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log dir:         %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Asset cache dir: %s\n", cfg.Paths.AssetCacheDir)

			fmt.Fprintln(out, "\nScanners:")
			enabled := cfg.Scanners.Enabled()
			if len(enabled) == 0 {
				fmt.Fprintln(out, "  (none enabled)")
			}
			for _, source := range enabled {
				fmt.Fprintf(out, "  %-9s %s\n", source.Source, source.Root)
			}

			fmt.Fprintln(out, "\nProviders:")
			fmt.Fprintf(out, "  steamstore: %s\n", yesNo(cfg.Providers.SteamStore.Enabled))
			fmt.Fprintf(out, "  steamgrid:  key configured: %s\n", yesNo(strings.TrimSpace(cfg.Providers.SteamGrid.APIKey) != ""))
			fmt.Fprintf(out, "  igdb:       %s\n", yesNo(cfg.Providers.IGDB.Enabled))
			fmt.Fprintf(out, "  tgdb:       %s\n", yesNo(cfg.Providers.TGDB.Enabled))

			fmt.Fprintf(out, "\nConfidence floor: %.2f\n", cfg.Matching.ConfidenceFloor)
			fmt.Fprintf(out, "Provider timeout: %s\n", cfg.ProviderTimeout())
			fmt.Fprintf(out, "Master timeout:   %s\n", cfg.MasterTimeout())
			fmt.Fprintf(out, "Rescan:           %s (every %s)\n", yesNo(cfg.Rescan.Enabled), cfg.RescanInterval())
			fmt.Fprintf(out, "Logging:          %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}
