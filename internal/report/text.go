package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// recentLimit bounds how many observations the summary scans
const recentLimit = 10000

func (g *Generator) generateTextReport(outputDir string, days int) error {
	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	now := g.now()
	cutoff := now.AddDate(0, 0, -days)

	fmt.Fprintf(file, "IP Address Report\n")
	fmt.Fprintf(file, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Period: Last %d days\n\n", days)
	fmt.Fprintln(file, strings.Repeat("=", 60))

	recent, err := g.history.Recent(recentLimit)
	if err != nil {
		return err
	}

	runs := 0
	var changes []int
	seen := make(map[string]bool)
	var addresses []string
	for i, e := range recent {
		if e.ObservedAt.Before(cutoff) {
			break
		}
		runs++
		if e.Changed {
			changes = append(changes, i)
		}
		if !seen[e.IP] {
			seen[e.IP] = true
			addresses = append(addresses, e.IP)
		}
	}

	fmt.Fprintln(file, "\nOVERALL STATISTICS")
	fmt.Fprintf(file, "  Runs: %d\n", runs)
	fmt.Fprintf(file, "  Changes detected: %d\n", len(changes))
	fmt.Fprintf(file, "  Distinct addresses: %d\n", len(addresses))
	for _, a := range addresses {
		fmt.Fprintf(file, "    %s\n", a)
	}
	fmt.Fprintln(file)
	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nCHANGES (newest first)")
	if len(changes) == 0 {
		fmt.Fprintln(file, "No address changes detected.")
	}
	for _, i := range changes {
		e := recent[i]
		from := e.PreviousIP
		if from == "" {
			from = "(initial)"
		}
		fmt.Fprintf(file, "  %s  %s  %s -> %s\n",
			e.ObservedAt.Format("2006-01-02 15:04:05"), e.Hostname, from, e.IP)
	}
	fmt.Fprintln(file)
	fmt.Fprintln(file, strings.Repeat("=", 60))

	failed, err := g.history.FailedNotifications(days)
	if err != nil {
		return err
	}

	fmt.Fprintln(file, "\nFAILED NOTIFICATIONS")
	if len(failed) == 0 {
		fmt.Fprintln(file, "None.")
	}
	for _, n := range failed {
		fmt.Fprintf(file, "  %s  run %s: %s\n", n.SentAt.Format("2006-01-02 15:04:05"), n.RunID, n.ErrorMessage)
	}

	return nil
}
