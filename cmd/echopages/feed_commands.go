package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"echopages/internal/fragment"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the fragment collections",
	}
	feedCmd.AddCommand(newFeedTrackCommand(ctx, "read", fragment.TrackCurated, "List the curated collection"))
	feedCmd.AddCommand(newFeedTrackCommand(ctx, "echoes", fragment.TrackCommunity, "List the community collection"))
	return feedCmd
}

func newFeedTrackCommand(ctx *commandContext, use string, track fragment.Track, short string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}
			if err := syncer.Refresh(cmd.Context()); err != nil {
				// Partial refresh still renders whatever arrived.
				ctx.ensureLogger().Warn("feed refresh incomplete", "error", err)
			}
			fragments := syncer.Collection(track)
			if limit > 0 && len(fragments) > limit {
				fragments = fragments[:limit]
			}
			out := cmd.OutOrStdout()
			if len(fragments) == 0 {
				fmt.Fprintln(out, "No fragments yet.")
				return nil
			}
			fmt.Fprintln(out, renderTable(fragmentHeaders, fragmentRows(fragments, 48), fragmentAligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many fragments")
	return cmd
}
