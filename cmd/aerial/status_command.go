package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"aerial/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog row counts and watermarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()

			counts, err := env.store.CountRows(cmd.Context())
			if err != nil {
				return err
			}
			last, err := env.store.GetLastUpdate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderCountsTable(counts))
			fmt.Fprintf(out, "EPG ingested:     %s\n", renderWatermark(last.EPGDate, colorize))
			fmt.Fprintf(out, "Alarms processed: %s\n", renderWatermark(last.AlarmsProcessedAt, colorize))
			return nil
		},
	}
}

func renderCountsTable(counts *catalog.Counts) string {
	rows := [][2]string{
		{"Channels", strconv.FormatInt(counts.Channels, 10)},
		{"Shows", strconv.FormatInt(counts.Shows, 10)},
		{"  placeholders", strconv.FormatInt(counts.Placeholders, 10)},
		{"  unmatched", strconv.FormatInt(counts.UnmatchedShows, 10)},
		{"Sessions", strconv.FormatInt(counts.Sessions, 10)},
		{"  future", strconv.FormatInt(counts.FutureSessions, 10)},
		{"Corrections", strconv.FormatInt(counts.Corrections, 10)},
		{"Cache entries", strconv.FormatInt(counts.CacheEntries, 10)},
		{"Users", strconv.FormatInt(counts.Users, 10)},
		{"Reminders", strconv.FormatInt(counts.Reminders, 10)},
		{"Alarms", strconv.FormatInt(counts.Alarms, 10)},
		{"Highlights", strconv.FormatInt(counts.Highlights, 10)},
		{"Streaming entries", strconv.FormatInt(counts.StreamingEntries, 10)},
	}
	return renderCountTable("Table", rows)
}

const (
	ansiReset  = "\x1b[0m"
	ansiYellow = "\x1b[33m"
)

func renderWatermark(at *time.Time, colorize bool) string {
	if at == nil {
		if colorize {
			return ansiYellow + "never" + ansiReset
		}
		return "never"
	}
	return at.UTC().Format("2006-01-02 15:04:05")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
