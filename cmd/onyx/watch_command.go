package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/rescan"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the periodic background rescan loop",
		Long: "Runs an immediate import, then rescans all enabled sources on the " +
			"configured interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				p, err := buildPipeline(cfg, store, logger)
				if err != nil {
					return err
				}

				signalCtx, stop := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				scheduler := rescan.New(p, cfg.RescanInterval(), logger)
				scheduler.Start(signalCtx)
				scheduler.TriggerNow()

				fmt.Fprintf(cmd.OutOrStdout(), "Watching for library changes every %s (ctrl-c to stop)\n", cfg.RescanInterval())
				<-signalCtx.Done()
				scheduler.Stop()
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
				return nil
			})
		},
	}
}
