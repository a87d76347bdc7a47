package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"echopages/internal/history"
	"echopages/internal/moderation"
	"echopages/internal/publish"
	"echopages/internal/services/gemini"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Publish a fragment from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			content, err := readDraftContent(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			logger := ctx.ensureLogger()
			classifier, err := gemini.New(cmd.Context(), cfg, store, logger)
			if err != nil {
				return err
			}
			backend, err := ctx.backendClient()
			if err != nil {
				return err
			}
			resolver, err := ctx.sessionResolver()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			orchestrator := publish.New(
				moderation.NewValidator(cfg.Moderation, store),
				classifier,
				backend,
				resolver,
				logger,
				publish.WithStatusFunc(func(status publish.Status) {
					fmt.Fprintf(out, "… %s\n", status)
				}),
			)

			result, err := orchestrator.Publish(cmd.Context(), &publish.Draft{Title: title, Content: content})
			if err != nil {
				return describePublishError(err)
			}

			fmt.Fprintf(out, "Published %q as %s (%s, score %d)\n",
				result.Fragment.Title, result.Fragment.ID, result.Fragment.Genre, result.Fragment.Score)
			fmt.Fprintf(out, "View it at %s\n", result.Route)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Fragment title (suggested by the classifier when omitted)")
	return cmd
}

func describePublishError(err error) error {
	var validation *publish.ValidationError
	if errors.As(err, &validation) {
		return fmt.Errorf("rejected: %s", validation.Reason)
	}
	var rejection *publish.SafetyRejection
	if errors.As(err, &rejection) {
		return fmt.Errorf("rejected: %s", rejection.Error())
	}
	var transport *publish.TransportFailure
	if errors.As(err, &transport) {
		return fmt.Errorf("%s; the draft was not consumed, try again", transport.Error())
	}
	var persistence *publish.PersistenceFailure
	if errors.As(err, &persistence) {
		return fmt.Errorf("%s; resubmitting will reuse the classification", persistence.Error())
	}
	return err
}
