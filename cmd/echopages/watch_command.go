package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"echopages/internal/feed"
	"echopages/internal/services/supabase"
)

// realtimeSubscriber adapts the backend client to the feed subscription
// seam.
type realtimeSubscriber struct {
	client *supabase.Client
}

func (r realtimeSubscriber) Subscribe(ctx context.Context, tables []string, onChange func(table string)) (feed.Listener, error) {
	return r.client.Subscribe(ctx, tables, onChange)
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow both collections via realtime change events",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.backendClient()
			if err != nil {
				return err
			}
			syncer, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := syncer.Refresh(runCtx); err != nil {
				ctx.ensureLogger().Warn("initial refresh incomplete", "error", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Watching for new fragments (Ctrl-C to stop)…")

			err = syncer.Watch(runCtx, realtimeSubscriber{client: backend})
			if runCtx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
