package models

import "time"

// ObservationEntry is one row of the run history
type ObservationEntry struct {
	RunID      string    `json:"run_id"`
	ObservedAt time.Time `json:"observed_at"`
	Hostname   string    `json:"hostname"`
	IP         string    `json:"ip"`
	PreviousIP string    `json:"previous_ip"`
	Changed    bool      `json:"changed"`
	Forced     bool      `json:"forced"`
}

// NotificationEntry records the outcome of one notification attempt
type NotificationEntry struct {
	RunID        string    `json:"run_id"`
	SentAt       time.Time `json:"sent_at"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message"`
}

// DailyChanges is the number of detected address changes on a given day
type DailyChanges struct {
	Date    string `json:"date"`
	Changes int    `json:"changes"`
	Runs    int    `json:"runs"`
}
