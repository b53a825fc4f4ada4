package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aerial/internal/searchkey"
)

func newSeedChannelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-channels",
		Short: "Load the canonical channel list into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			count, err := env.store.SeedChannelsFromFile(cmd.Context(), env.cfg.Paths.ChannelListPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d channels\n", count)
			return nil
		},
	}
}

func newRebuildKeysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-keys",
		Short: "Recompute the search key of every show",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			shows, err := env.store.AllShows(cmd.Context())
			if err != nil {
				return err
			}
			rewritten := 0
			for _, show := range shows {
				title := ""
				if show.OriginalTitle != nil && *show.OriginalTitle != "" {
					title = *show.OriginalTitle
				} else if show.LocalizedTitle != nil {
					title = *show.LocalizedTitle
				}
				if title == "" {
					continue
				}
				key := searchkey.MakeSearchable(title)
				if key == show.SearchTitle {
					continue
				}
				if err := env.store.UpdateSearchTitle(cmd.Context(), show.ID, key); err != nil {
					return err
				}
				rewritten++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt %d of %d search keys\n", rewritten, len(shows))
			return nil
		},
	}
}

func newSetMatchCommand(ctx *commandContext) *cobra.Command {
	var movie bool
	var series bool

	cmd := &cobra.Command{
		Use:   "set-match <show-id> <tmdb-id>",
		Short: "Force a show onto a TMDB id and refresh its metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if movie == series {
				return fmt.Errorf("pass exactly one of --movie or --series")
			}
			showID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid show id %q", args[0])
			}
			tmdbID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tmdb id %q", args[1])
			}

			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			show, err := env.matcher.Enrich(cmd.Context(), showID, tmdbID, movie)
			if err != nil {
				return err
			}
			title := show.SearchTitle
			if show.OriginalTitle != nil {
				title = *show.OriginalTitle
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Show %d matched to TMDB %d (%s)\n", showID, tmdbID, title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&movie, "movie", false, "The TMDB id is a movie")
	cmd.Flags().BoolVar(&series, "series", false, "The TMDB id is a series")
	return cmd
}

func newVacuumCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the catalog database",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			if err := env.store.Vacuum(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Catalog compacted")
			return nil
		},
	}
}
