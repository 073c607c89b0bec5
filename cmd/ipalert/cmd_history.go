package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipalert/internal/config"
	"ipalert/internal/history"
)

type historyOptions struct {
	dbPath string
	limit  int
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent checks from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveHistoryPath(opts.dbPath, root.configPath)
			if err != nil {
				return err
			}

			db, err := history.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.Recent(opts.limit)
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tHOSTNAME\tIP\tPREVIOUS\tCHANGED\tFORCED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
					e.ObservedAt.Format("2006-01-02 15:04:05"), e.Hostname, e.IP, e.PreviousIP, e.Changed, e.Forced)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "", "history database (defaults to history.path from the config)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

// resolveHistoryPath prefers an explicit path over the configured one
func resolveHistoryPath(flagPath, configPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if !cfg.History.Enabled() {
		return "", fmt.Errorf("no history database configured; set history.path or pass --db")
	}
	return cfg.History.Path, nil
}
