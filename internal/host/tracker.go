package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ipalert/internal/models"
	"ipalert/internal/record"
)

// Tracker produces the current host record and compares it to the last one
type Tracker struct {
	resolver models.Resolver
	store    models.RecordStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewTracker creates a new Tracker
func NewTracker(resolver models.Resolver, store models.RecordStore, logger *zap.Logger) *Tracker {
	return &Tracker{
		resolver: resolver,
		store:    store,
		now:      time.Now,
		logger:   logger,
	}
}

// Observe resolves the current state, reads the previous record and then
// overwrites it with the current one. The record is written whether or not
// the address changed. A resolution failure returns before anything is
// written.
func (t *Tracker) Observe(ctx context.Context) (models.Observation, error) {
	current, err := t.resolver.Resolve(ctx)
	if err != nil {
		return models.Observation{}, err
	}
	current.Timestamp = time.UnixMilli(t.now().UnixMilli())

	obs := models.Observation{Current: current}

	previous, err := t.store.Load()
	switch {
	case errors.Is(err, record.ErrRecordCorrupt):
		t.logger.Warn("ignoring malformed record", zap.Error(err))
		obs.PreviousCorrupt = true
	case err != nil:
		return obs, fmt.Errorf("load previous record: %w", err)
	case previous == nil:
		t.logger.Info("initial execution",
			zap.String("hostname", current.Hostname),
			zap.String("ip", current.IP),
		)
	default:
		obs.Previous = previous
	}

	if err := t.store.Save(current); err != nil {
		return obs, fmt.Errorf("persist record: %w", err)
	}

	obs.Changed = models.HasChanged(current, obs.Previous)
	return obs, nil
}
