package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/pipeline"
	"onyx/internal/scan"
)

// barSink feeds orchestrator progress lines into a spinner.
type barSink struct {
	bar *progressbar.ProgressBar
}

func (s *barSink) Progress(message string) {
	s.bar.Describe(message)
	_ = s.bar.Add(1)
}

// plainSink writes progress lines directly; used when stdout is not a
// terminal.
type plainSink struct{}

func (plainSink) Progress(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var skipMetadata bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan all enabled sources and import discoveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				var p *pipeline.Pipeline
				if skipMetadata {
					p = pipeline.New(cfg, store, nil, nil, logger)
				} else {
					built, err := buildPipeline(cfg, store, logger)
					if err != nil {
						return err
					}
					p = built
				}

				var sink scan.ProgressSink
				if isTerminal(os.Stdout) {
					bar := progressbar.NewOptions(-1,
						progressbar.OptionSetDescription("scanning"),
						progressbar.OptionSpinnerType(14),
						progressbar.OptionSetWriter(os.Stderr),
					)
					defer func() { _ = bar.Finish() }()
					sink = &barSink{bar: bar}
				} else {
					sink = plainSink{}
				}

				summary, err := p.Run(runCtx, sink)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scanned %d installs: %d new, %d known\n", summary.Scanned, summary.New, summary.Known)
				if !skipMetadata {
					fmt.Fprintf(out, "Metadata: %d resolved, %d ambiguous, %d unmatched\n",
						summary.Resolved, summary.Ambiguous, summary.Unmatched)
				}
				if len(summary.Missing) > 0 {
					fmt.Fprintf(out, "%d entries no longer found on disk (remove with `onyx library remove <id>`):\n", len(summary.Missing))
					for _, entry := range summary.Missing {
						fmt.Fprintf(out, "  %s  %s\n", entry.ID, entry.Title)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Import discoveries without resolving metadata")
	return cmd
}
