package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"echopages/internal/feed"
)

// resolveShowTarget accepts a bare fragment id or a deep link in hash form
// such as "#/p/41".
func resolveShowTarget(arg string) (string, error) {
	trimmed := strings.TrimSpace(arg)
	if trimmed == "" {
		return "", fmt.Errorf("fragment id required")
	}
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "/") {
		route := feed.ResolveRoute(trimmed, true)
		if route.View != feed.ViewDetail {
			return "", fmt.Errorf("%q is not a fragment link", arg)
		}
		return route.FragmentID, nil
	}
	return trimmed, nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|#/p/id>",
		Short: "Show a single fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveShowTarget(args[0])
			if err != nil {
				return err
			}
			syncer, err := ctx.newSynchronizer()
			if err != nil {
				return err
			}
			if err := syncer.Refresh(cmd.Context()); err != nil {
				ctx.ensureLogger().Warn("feed refresh incomplete", "error", err)
			}
			found, ok := syncer.Lookup(id)
			if !ok {
				return fmt.Errorf("fragment %s not found", id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", found.Title)
			fmt.Fprintf(out, "by %s · %s · %s · score %d\n", found.Author, found.Genre, formatTimestamp(found.Timestamp), found.Score)
			if found.EmotionTag != "" {
				fmt.Fprintf(out, "emotion: %s (%d)\n", found.EmotionTag, found.EmotionalWeight)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, found.Content)
			if found.Justification != "" {
				fmt.Fprintf(out, "\n— %s\n", found.Justification)
			}
			return nil
		},
	}
}
