package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"echopages/internal/publish"
	"echopages/internal/session"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var penName string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your publishing profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.sessionResolver()
			if err != nil {
				return err
			}
			actor, err := resolver.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			if actor.Identity == session.IdentityAnonymous {
				return publish.ErrSignInRequired
			}

			if penName != "" {
				backend, err := ctx.backendClient()
				if err != nil {
					return err
				}
				if err := backend.UpdateDisplayName(cmd.Context(), penName); err != nil {
					return err
				}
				actor, err = resolver.Resolve(cmd.Context())
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Email:    %s\n", actor.Email)
			fmt.Fprintf(out, "Pen name: %s\n", actor.PenName())
			fmt.Fprintf(out, "Identity: %s\n", actor.Identity)
			fmt.Fprintf(out, "Track:    %s\n", actor.Track())

			syncer, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}
			if err := syncer.Refresh(cmd.Context()); err != nil {
				ctx.ensureLogger().Warn("feed refresh incomplete", "error", err)
			}
			var count, total int
			for _, f := range syncer.Collection(actor.Track()) {
				if f.UserID == actor.UserID || (f.UserID == "" && f.Author == actor.PenName()) {
					count++
					total += f.Score
				}
			}
			if count > 0 {
				fmt.Fprintf(out, "Published: %d fragments, mean score %.1f\n", count, float64(total)/float64(count))
			} else {
				fmt.Fprintln(out, "Published: none yet")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&penName, "pen-name", "", "Set a new pen name")
	return cmd
}
