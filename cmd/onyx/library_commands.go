package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"onyx/internal/config"
	"onyx/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and manage library entries",
	}

	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryShowCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))
	libraryCmd.AddCommand(newLibraryLockCommand(ctx))
	libraryCmd.AddCommand(newLibraryCategorizeCommand(ctx))
	libraryCmd.AddCommand(newLibraryFavoriteCommand(ctx))
	libraryCmd.AddCommand(newLibraryHideCommand(ctx))
	libraryCmd.AddCommand(newLibraryHealthCommand(ctx))

	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				entries, err := store.GetAll(runCtx)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					if entry.Hidden && !showHidden {
						continue
					}
					rows = append(rows, []string{
						entry.ID,
						entry.Title,
						entry.Source,
						entry.ReleaseDate,
						yesNo(entry.Favorite),
						yesNo(entry.Hidden),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Source", "Released", "Favorite", "Hidden"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include hidden entries")
	return cmd
}

func newLibraryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one library entry in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				entry, err := store.Get(runCtx, args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("entry %q not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:            %s\n", entry.ID)
				fmt.Fprintf(out, "Title:         %s\n", entry.Title)
				fmt.Fprintf(out, "Source:        %s\n", entry.Source)
				if entry.SourceAppID != "" {
					fmt.Fprintf(out, "Source app id: %s\n", entry.SourceAppID)
				}
				if entry.InstallPath != "" {
					fmt.Fprintf(out, "Install path:  %s\n", entry.InstallPath)
				}
				if entry.ExePath != "" {
					fmt.Fprintf(out, "Executable:    %s\n", entry.ExePath)
				}
				if entry.ReleaseDate != "" {
					fmt.Fprintf(out, "Released:      %s\n", entry.ReleaseDate)
				}
				if len(entry.Genres) > 0 {
					fmt.Fprintf(out, "Genres:        %s\n", strings.Join(entry.Genres, ", "))
				}
				if len(entry.Developers) > 0 {
					fmt.Fprintf(out, "Developers:    %s\n", strings.Join(entry.Developers, ", "))
				}
				if len(entry.Publishers) > 0 {
					fmt.Fprintf(out, "Publishers:    %s\n", strings.Join(entry.Publishers, ", "))
				}
				if entry.AgeRating != "" {
					fmt.Fprintf(out, "Age rating:    %s\n", entry.AgeRating)
				}
				if entry.CriticScore > 0 {
					fmt.Fprintf(out, "Critic score:  %.0f\n", entry.CriticScore)
				}
				if entry.CommunityScore > 0 {
					fmt.Fprintf(out, "Community:     %.0f\n", entry.CommunityScore)
				}
				if entry.BoxArtURL != "" {
					fmt.Fprintf(out, "Box art:       %s\n", entry.BoxArtURL)
				}
				if len(entry.Categories) > 0 {
					fmt.Fprintf(out, "Categories:    %s\n", strings.Join(entry.Categories, ", "))
				}
				fmt.Fprintf(out, "Favorite:      %s\n", yesNo(entry.Favorite))
				fmt.Fprintf(out, "Hidden:        %s\n", yesNo(entry.Hidden))
				if len(entry.LockedFields) > 0 {
					fmt.Fprintf(out, "Locked fields: %s\n", strings.Join(entry.LockedFields, ", "))
				}
				if entry.Description != "" {
					fmt.Fprintf(out, "\n%s\n", entry.Description)
				}
				return nil
			})
		},
	}
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a library entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				removed, err := store.Delete(runCtx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("entry %q not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func newLibraryLockCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "lock <id> [field...]",
		Short: "Lock fields against metadata overwrite",
		Long: "Lock fields against metadata overwrite. Lockable fields: " +
			strings.Join(library.LockableFields, ", ") + ".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				id := args[0]
				fields := args[1:]
				if clear {
					fields = nil
				} else if len(fields) == 0 {
					return fmt.Errorf("name at least one field to lock, or pass --clear")
				}
				if err := store.SetFieldLocks(runCtx, id, fields); err != nil {
					return err
				}
				if clear {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared field locks on %s\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Locked %s on %s\n", strings.Join(fields, ", "), id)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear all field locks")
	return cmd
}

func newLibraryCategorizeCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "categorize <id> [category...]",
		Short: "Replace the category list on an entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				id := args[0]
				categories := args[1:]
				if clear {
					categories = nil
				} else if len(categories) == 0 {
					return fmt.Errorf("name at least one category, or pass --clear")
				}
				if err := store.SetCategories(runCtx, id, categories); err != nil {
					return err
				}
				if clear {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared categories on %s\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Categorized %s as %s\n", id, strings.Join(categories, ", "))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear all categories")
	return cmd
}

func newLibraryFavoriteCommand(ctx *commandContext) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark an entry as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				return store.SetFavorite(runCtx, args[0], !unset)
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the favorite mark")
	return cmd
}

func newLibraryHideCommand(ctx *commandContext) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide an entry from default listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				return store.SetHidden(runCtx, args[0], !unset)
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Unhide the entry")
	return cmd
}

func newLibraryHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check library database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(runCtx context.Context, _ *config.Config, store *library.Store, _ *slog.Logger) error {
				health, err := store.CheckHealth(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:    %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Entries:   %d\n", health.TotalEntries)
				fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityOK))
				return nil
			})
		},
	}
}
