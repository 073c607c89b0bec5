package history

// Prune deletes history older than the given number of days. Zero keeps
// everything.
func (db *DB) Prune(days int) error {
	if days <= 0 {
		return nil
	}
	cutoff := db.cutoff(days)

	if _, err := db.Exec(`DELETE FROM observations WHERE observed_at < ?`, cutoff); err != nil {
		return err
	}

	if _, err := db.Exec(`DELETE FROM notifications WHERE sent_at < ?`, cutoff); err != nil {
		return err
	}

	// Vacuum to reclaim space (run occasionally)
	if db.now().Day() == 1 { // Run on first day of month
		_, err := db.Exec("VACUUM")
		return err
	}

	return nil
}
