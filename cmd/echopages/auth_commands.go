package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"echopages/internal/services/supabase"
	"echopages/internal/session"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and out of the backend",
	}
	authCmd.AddCommand(newAuthLoginCommand(ctx))
	authCmd.AddCommand(newAuthVerifyCommand(ctx))
	authCmd.AddCommand(newAuthLogoutCommand(ctx))
	authCmd.AddCommand(newAuthWhoamiCommand(ctx))
	return authCmd
}

func newAuthLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Request a one-time sign-in code by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.backendClient()
			if err != nil {
				return err
			}
			if err := backend.SignInWithOTP(cmd.Context(), args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sign-in code sent to %s\n", args[0])
			fmt.Fprintln(out, "Complete with: echopages auth verify <email> <code>")
			return nil
		},
	}
}

func newAuthVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email> <code>",
		Short: "Exchange an emailed code for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.backendClient()
			if err != nil {
				return err
			}
			stored, err := backend.VerifyOTP(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			resolver, err := ctx.sessionResolver()
			if err != nil {
				return err
			}
			actor, err := resolver.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s\n", stored.User.Email)
			if actor.IsAdmin() {
				fmt.Fprintln(out, "Curator access: fragments publish to the curated collection")
			}
			return nil
		},
	}
}

func newAuthLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := ctx.backendClient()
			if err != nil {
				return err
			}
			if err := backend.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newAuthWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.sessionResolver()
			if err != nil {
				return err
			}
			actor, err := resolver.Resolve(cmd.Context())
			if err != nil && !errors.Is(err, supabase.ErrNoSession) {
				return err
			}
			out := cmd.OutOrStdout()
			if actor.Identity == "" || actor.Identity == session.IdentityAnonymous {
				fmt.Fprintln(out, "Not signed in")
				return nil
			}
			fmt.Fprintf(out, "%s (%s)\n", actor.Email, actor.Identity)
			return nil
		},
	}
}
