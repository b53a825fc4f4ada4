package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aerial/internal/parsers"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var channelFlag string

	cmd := &cobra.Command{
		Use:     "ingest <file>",
		Aliases: []string{"ingest-file"},
		Short:   "Ingest one broadcaster schedule file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			channelName := strings.TrimSpace(channelFlag)
			if channelName == "" {
				inferred, ok := parsers.NewRegistry(nil, nil, time.UTC, 0).InferChannel(path)
				if !ok {
					return fmt.Errorf("cannot infer channel from %q; pass --channel", path)
				}
				channelName = inferred
			}

			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			result, err := env.orch.IngestFile(cmd.Context(), path, channelName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result == nil {
				fmt.Fprintf(out, "%s held no usable sessions\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s: %d sessions (%d added, %d updated, %d deleted, %d new shows)\n",
				channelName, result.Total, result.Added, result.Updated, result.Deleted, result.NewShows)
			return nil
		},
	}

	cmd.Flags().StringVar(&channelFlag, "channel", "", "Channel the file belongs to (inferred from the filename when omitted)")
	return cmd
}
