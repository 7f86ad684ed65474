package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/controller"
	"github.com/goliatone/go-formsync/pkg/memform"
	"github.com/goliatone/go-formsync/pkg/notify"
)

type globalFlags struct {
	form    string
	config  string
	url     string
	locale  string
	debug   bool
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "formsync",
		Short: "Drive a record form against its backend endpoint",
		Long: `formsync loads a form definition, binds it to the row endpoint named by
its action and lets you view, edit, save, delete and favourite the record
from the terminal.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.form, "form", "f", "", "form definition file (YAML or JSON)")
	pf.StringVarP(&flags.config, "config", "c", "", "controller config file (YAML, JSON or TOML)")
	pf.StringVar(&flags.url, "url", "", "base URL relative form actions resolve against")
	pf.StringVar(&flags.locale, "locale", "", "message locale (en, de)")
	pf.BoolVar(&flags.debug, "debug", false, "trace every operation")
	pf.DurationVar(&flags.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	_ = root.MarkPersistentFlagRequired("form")

	root.AddCommand(newEditCmd(flags))
	root.AddCommand(newShowCmd(flags))
	root.AddCommand(newPayloadCmd(flags))
	return root
}

// newLogger builds the zap logger behind the logr interface the packages
// use. Without debug only warnings and errors are written.
func newLogger(debug bool) (logr.Logger, func(), error) {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zl, err = cfg.Build()
	}
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("formsync: build logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

func loadConfig(flags *globalFlags) (controller.Config, error) {
	cfg := controller.DefaultConfig()
	if path := strings.TrimSpace(flags.config); path != "" {
		loaded, err := controller.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if flags.url != "" {
		cfg.URL = flags.url
	}
	if flags.locale != "" {
		cfg.Locale = flags.locale
	}
	if flags.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// bind loads the form and builds its controller.
func bind(flags *globalFlags, cfg controller.Config, notifier notify.Notifier, log logr.Logger) (*memform.Document, *controller.Controller, error) {
	doc, err := memform.Load(flags.form)
	if err != nil {
		return nil, nil, err
	}
	ctl, err := controller.New(doc, cfg,
		controller.WithNotifier(notifier),
		controller.WithLogger(log),
		controller.WithHTTPClient(&http.Client{Timeout: flags.timeout}),
	)
	if err != nil {
		return nil, nil, err
	}
	return doc, ctl, nil
}
