package history

import (
	"database/sql"
	"time"

	"ipalert/internal/models"
)

// SaveObservation saves one run's observation
func (db *DB) SaveObservation(e models.ObservationEntry) error {
	query := `
        INSERT INTO observations (run_id, observed_at, hostname, ip, previous_ip, changed, forced)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		e.RunID,
		e.ObservedAt.UnixMilli(),
		e.Hostname,
		e.IP,
		e.PreviousIP,
		e.Changed,
		e.Forced,
	)
	return err
}

// SaveNotification saves the outcome of a notification attempt
func (db *DB) SaveNotification(e models.NotificationEntry) error {
	query := `
        INSERT INTO notifications (run_id, sent_at, success, error_message)
        VALUES (?, ?, ?, ?)
    `
	_, err := db.Exec(query,
		e.RunID,
		e.SentAt.UnixMilli(),
		e.Success,
		e.ErrorMessage,
	)
	return err
}

// Recent retrieves the most recent observations, newest first
func (db *DB) Recent(limit int) ([]models.ObservationEntry, error) {
	query := `
        SELECT run_id, observed_at, hostname, ip, previous_ip, changed, forced
        FROM observations
        ORDER BY observed_at DESC, id DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ObservationEntry
	for rows.Next() {
		var e models.ObservationEntry
		var observedAt int64
		err := rows.Scan(&e.RunID, &observedAt, &e.Hostname, &e.IP, &e.PreviousIP, &e.Changed, &e.Forced)
		if err != nil {
			continue
		}
		e.ObservedAt = time.UnixMilli(observedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// FailedNotifications retrieves failed notification attempts of the last days
func (db *DB) FailedNotifications(days int) ([]models.NotificationEntry, error) {
	query := `
        SELECT run_id, sent_at, success, error_message
        FROM notifications
        WHERE success = 0
        AND sent_at >= ?
        ORDER BY sent_at DESC
    `

	rows, err := db.Query(query, db.cutoff(days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.NotificationEntry
	for rows.Next() {
		var e models.NotificationEntry
		var sentAt int64
		var errMsg sql.NullString
		if err := rows.Scan(&e.RunID, &sentAt, &e.Success, &errMsg); err != nil {
			continue
		}
		e.SentAt = time.UnixMilli(sentAt)
		if errMsg.Valid {
			e.ErrorMessage = errMsg.String
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ChangesPerDay counts runs and detected changes per UTC day
func (db *DB) ChangesPerDay(days int) ([]models.DailyChanges, error) {
	query := `
        SELECT
            strftime('%Y-%m-%d', observed_at / 1000, 'unixepoch') as date,
            COUNT(*) as runs,
            SUM(CASE WHEN changed THEN 1 ELSE 0 END) as changes
        FROM observations
        WHERE observed_at >= ?
        GROUP BY date
        ORDER BY date
    `

	rows, err := db.Query(query, db.cutoff(days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.DailyChanges
	for rows.Next() {
		var d models.DailyChanges
		if err := rows.Scan(&d.Date, &d.Runs, &d.Changes); err != nil {
			continue
		}
		result = append(result, d)
	}

	return result, rows.Err()
}
