package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"echopages/internal/history"
	"echopages/internal/services/gemini"
)

func newDailyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Print the daily inspirational line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			client, err := gemini.New(cmd.Context(), cfg, store, ctx.ensureLogger())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.DailyLine(cmd.Context()))
			return nil
		},
	}
}
