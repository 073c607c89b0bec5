package models

import (
	"context"
)

// Resolver determines the current host record
type Resolver interface {
	Resolve(ctx context.Context) (HostRecord, error)
}

// RecordStore persists the single most recent host record
type RecordStore interface {
	Load() (*HostRecord, error)
	Save(record HostRecord) error
}

// Notifier delivers a change notification
type Notifier interface {
	Notify(ctx context.Context, obs Observation) error
}

// History defines operations for the optional run audit trail
type History interface {
	SaveObservation(entry ObservationEntry) error
	SaveNotification(entry NotificationEntry) error
	Recent(limit int) ([]ObservationEntry, error)
	FailedNotifications(days int) ([]NotificationEntry, error)
	ChangesPerDay(days int) ([]DailyChanges, error)
	Prune(days int) error
	Close() error
}
