package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ipalert/internal/alert"
	"ipalert/internal/config"
	"ipalert/internal/history"
	"ipalert/internal/host"
	"ipalert/internal/models"
	"ipalert/internal/notify"
	"ipalert/internal/record"
)

type rootOptions struct {
	configPath string
	recordPath string
	force      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "ipalert",
		Short:        "Send an email when this host's IP address changes",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "C", config.DefaultPath("config.json"), "file path for config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "human-readable debug logging")
	cmd.Flags().StringVarP(&opts.recordPath, "record", "R", config.DefaultPath("record.json"), "file path for record file")
	cmd.Flags().BoolVarP(&opts.force, "test", "T", false, "test the program (always send email)")

	cmd.AddCommand(newHistoryCmd(opts), newReportCmd(opts))
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func runCheck(cmd *cobra.Command, opts *rootOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		logger.Error("failed to load configuration", zap.String("path", opts.configPath), zap.Error(err))
		return err
	}

	var hist models.History
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history unavailable", zap.String("path", cfg.History.Path), zap.Error(err))
		} else {
			defer db.Close()
			hist = db
		}
	}

	tracker := host.NewTracker(host.NewResolver(cfg, logger), record.NewFile(opts.recordPath), logger)
	sender := notify.NewSender(cfg.SMTP, cfg.Mail, logger)
	runner := alert.New(tracker, sender, hist, alert.Options{
		Force:         opts.force,
		RetentionDays: cfg.History.RetentionDays,
	}, logger)

	res, err := runner.Run(cmd.Context())
	printStatus(cmd.OutOrStdout(), res, cfg.Mail.Receivers)
	return err
}

func printStatus(w io.Writer, res alert.Result, receivers []string) {
	obs := res.Observation
	if obs.Current.IP == "" {
		return
	}

	fmt.Fprintf(w, "%s\t%s\t%s\n", obs.Current.Hostname, obs.Current.IP, notify.FormatTime(obs.Current.Timestamp))
	if obs.Changed {
		fmt.Fprintln(w, "The IP is changed.")
	} else {
		fmt.Fprintln(w, "The IP is not changed.")
	}
	if res.Notified {
		fmt.Fprintf(w, "An alert mail has been sent to %v.\n", receivers)
	}
}
