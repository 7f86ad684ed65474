package main

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsync/pkg/notify"
	"github.com/goliatone/go-formsync/pkg/payload"
	"github.com/goliatone/go-formsync/pkg/prompt"
)

func newEditCmd(flags *globalFlags) *cobra.Command {
	var noRefresh bool
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the record interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, flush, err := newLogger(flags.debug)
			if err != nil {
				return err
			}
			defer flush()

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			driver := prompt.NewSurveyDriver(cmd.OutOrStdout())
			notifier := notify.NewTerminal(notify.WithWriter(cmd.ErrOrStderr()), notify.WithDriver(driver))
			notifier.OnPromptError = func(err error) { log.Error(err, "confirmation prompt failed") }

			doc, ctl, err := bind(flags, cfg, notifier, log)
			if err != nil {
				return err
			}
			defer ctl.Close()

			s := &session{ctl: ctl, doc: doc, driver: driver, out: cmd.OutOrStdout()}
			return s.run(cmd.Context(), !noRefresh)
		},
	}
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "use the config row instead of fetching it first")
	return cmd
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch the record and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, flush, err := newLogger(flags.debug)
			if err != nil {
				return err
			}
			defer flush()

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			notifier := notify.NewTerminal(notify.WithWriter(cmd.ErrOrStderr()))
			_, ctl, err := bind(flags, cfg, notifier, log)
			if err != nil {
				return err
			}
			defer ctl.Close()

			if _, err := ctl.Refresh(cmd.Context()).Wait(); err != nil {
				return err
			}
			return printRow(cmd.OutOrStdout(), ctl.Row())
		},
	}
}

func newPayloadCmd(flags *globalFlags) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Print the payload a submit would send",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			_, ctl, err := bind(flags, cfg, notify.Discard, logr.Discard())
			if err != nil {
				return err
			}
			defer ctl.Close()

			pairs := ctl.Payload(&payload.Trigger{Type: reason})
			out := cmd.OutOrStdout()
			for _, pair := range pairs {
				fmt.Fprintf(out, "%s=%s\n", pair.Name, pair.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "submit", "submit reason sent with the payload")
	return cmd
}

func printRow(w io.Writer, row any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(row); err != nil {
		return fmt.Errorf("formsync: encode row: %w", err)
	}
	return enc.Close()
}
