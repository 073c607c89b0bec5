package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipalert/internal/history"
	"ipalert/internal/report"
)

type reportOptions struct {
	dbPath    string
	outputDir string
	days      int
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a chart and summary of address changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(root.verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			path, err := resolveHistoryPath(opts.dbPath, root.configPath)
			if err != nil {
				return err
			}

			db, err := history.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			dir, err := report.NewGenerator(db, logger).GenerateReport(opts.outputDir, opts.days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report generated in: %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "history database (defaults to history.path from the config)")
	cmd.Flags().StringVarP(&opts.outputDir, "out", "o", "reports", "output directory")
	cmd.Flags().IntVarP(&opts.days, "days", "d", 30, "period covered by the report")
	return cmd
}
