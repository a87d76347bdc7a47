package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRanksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ranks",
		Short: "Show the community hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}
			if err := syncer.Refresh(cmd.Context()); err != nil {
				ctx.ensureLogger().Warn("feed refresh incomplete", "error", err)
			}
			ranks := syncer.Leaderboard()
			out := cmd.OutOrStdout()
			if len(ranks) == 0 {
				fmt.Fprintln(out, "No community fragments yet.")
				return nil
			}
			rows := make([][]string, 0, len(ranks))
			for i, rank := range ranks {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					rank.Author,
					fmt.Sprintf("%d", rank.Fragments),
					fmt.Sprintf("%.1f", rank.MeanScore),
				})
			}
			headers := []string{"#", "AUTHOR", "FRAGMENTS", "MEAN SCORE"}
			aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
}
