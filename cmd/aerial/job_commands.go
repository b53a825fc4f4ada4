package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDailyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Run the daily job: catalog upkeep, channel refresh, EPG ingest, alarms",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()
			if err := env.orch.Daily(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daily job finished")
			return nil
		},
	}
}

func newHourlyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hourly",
		Short: "Run the hourly job: dispatch elapsed reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()
			if err := env.orch.Hourly(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Hourly job finished")
			return nil
		},
	}
}

func newWeeklyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Run the weekly job: recompute highlight lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closeEnv, err := ctx.openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv()
			if err := env.orch.Weekly(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Weekly job finished")
			return nil
		},
	}
}
