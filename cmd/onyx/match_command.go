package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"onyx/internal/assetcache"
	"onyx/internal/config"
	"onyx/internal/library"
	"onyx/internal/metadata"
	"onyx/internal/pipeline"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var titleOverride string
	var apply int
	var auto bool

	cmd := &cobra.Command{
		Use:   "match <id>",
		Short: "Resolve or fix the metadata match for an entry",
		Long: "Shows ranked provider candidates for a library entry. Use --apply <n> to " +
			"accept a listed candidate, or --auto to accept the best match when its " +
			"confidence clears the configured floor.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				entry, err := store.Get(runCtx, args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("entry %q not found", args[0])
				}

				resolver, err := buildResolver(cfg, logger)
				if err != nil {
					return err
				}
				assets, err := assetcache.New(cfg, logger)
				if err != nil {
					return err
				}
				p := pipeline.New(cfg, store, resolver, assets, logger)

				title := strings.TrimSpace(titleOverride)
				if title == "" {
					title = entry.Title
				}
				query := metadata.Query{
					Title:       title,
					Source:      entry.Source,
					SourceAppID: entry.SourceAppID,
					Platform:    entry.PlatformTag,
				}

				out := cmd.OutOrStdout()
				candidates, err := resolver.Search(runCtx, query)
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					fmt.Fprintf(out, "No candidates found for %q\n", title)
					return nil
				}

				if apply > 0 {
					if apply > len(candidates) {
						return fmt.Errorf("candidate %d out of range (1-%d)", apply, len(candidates))
					}
					chosen := candidates[apply-1]
					if err := p.ApplyCandidate(runCtx, entry, chosen); err != nil {
						return err
					}
					fmt.Fprintf(out, "Applied %q from %s to %s\n", chosen.Title, chosen.Provider, entry.ID)
					return nil
				}

				match, err := resolver.MatchBest(runCtx, query)
				if err != nil {
					return err
				}

				if auto {
					if match.Outcome != metadata.OutcomeMatched {
						return fmt.Errorf("best match is %s (confidence %.2f); pick a candidate with --apply", match.Outcome, match.Confidence)
					}
					if err := p.ApplyCandidate(runCtx, entry, *match.Best); err != nil {
						return err
					}
					fmt.Fprintf(out, "Applied %q from %s (confidence %.2f)\n", match.Best.Title, match.Best.Provider, match.Confidence)
					return nil
				}

				fmt.Fprintf(out, "Best match: %s (confidence %.2f)\n\n", match.Outcome, match.Confidence)
				rows := make([][]string, 0, len(candidates))
				for i, candidate := range candidates {
					year := ""
					if candidate.Year > 0 {
						year = strconv.Itoa(candidate.Year)
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						candidate.Title,
						year,
						candidate.Provider,
						string(candidate.Kind),
						strconv.Itoa(candidate.Score),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Title", "Year", "Provider", "Kind", "Score"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
				))
				fmt.Fprintln(out, "Accept a candidate with --apply <#>")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&titleOverride, "title", "", "Search with this title instead of the entry's")
	cmd.Flags().IntVar(&apply, "apply", 0, "Apply the numbered candidate from the list")
	cmd.Flags().BoolVar(&auto, "auto", false, "Apply the best match if confidence clears the floor")
	return cmd
}
