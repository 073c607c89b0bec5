// Package alert coordinates a single check: observe the host, notify on
// change, and record what happened.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ipalert/internal/models"
)

// Observer produces the current observation and persists it
type Observer interface {
	Observe(ctx context.Context) (models.Observation, error)
}

// Options tunes a Runner
type Options struct {
	// Force sends a notification even when nothing changed
	Force bool
	// RetentionDays bounds the history kept; 0 keeps everything
	RetentionDays int
}

// Result describes a finished run
type Result struct {
	RunID       string
	Observation models.Observation
	Notified    bool
}

// Runner coordinates the tracker, the notifier and the history
type Runner struct {
	observer Observer
	notifier models.Notifier
	history  models.History // optional
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a new Runner. history may be nil.
func New(observer Observer, notifier models.Notifier, history models.History, opts Options, logger *zap.Logger) *Runner {
	return &Runner{
		observer: observer,
		notifier: notifier,
		history:  history,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

// Run performs one check. Observation failures abort before anything is
// written or sent. Notification failures are returned after the record has
// been persisted; the record is not rolled back.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", res.RunID))

	obs, err := r.observer.Observe(ctx)
	if err != nil {
		return res, fmt.Errorf("observe host state: %w", err)
	}
	res.Observation = obs

	fields := []zap.Field{
		zap.String("hostname", obs.Current.Hostname),
		zap.String("ip", obs.Current.IP),
		zap.Bool("changed", obs.Changed),
	}
	if obs.Previous != nil {
		fields = append(fields, zap.String("previous_ip", obs.Previous.IP))
	}
	logger.Info("host observed", fields...)

	r.saveObservation(logger, res.RunID, obs)
	defer r.performMaintenance(logger)

	if !obs.Changed && !r.opts.Force {
		logger.Info("ip unchanged, no alert sent")
		return res, nil
	}
	if !obs.Changed {
		logger.Info("ip unchanged, sending test alert")
	}

	err = r.notifier.Notify(ctx, obs)
	r.saveNotification(logger, res.RunID, err)
	if err != nil {
		logger.Error("failed to send alert", zap.Error(err))
		return res, fmt.Errorf("send alert: %w", err)
	}

	res.Notified = true
	return res, nil
}

func (r *Runner) saveObservation(logger *zap.Logger, runID string, obs models.Observation) {
	if r.history == nil {
		return
	}
	entry := models.ObservationEntry{
		RunID:      runID,
		ObservedAt: obs.Current.Timestamp,
		Hostname:   obs.Current.Hostname,
		IP:         obs.Current.IP,
		Changed:    obs.Changed,
		Forced:     r.opts.Force,
	}
	if obs.Previous != nil {
		entry.PreviousIP = obs.Previous.IP
	}
	if err := r.history.SaveObservation(entry); err != nil {
		logger.Warn("failed to save observation", zap.Error(err))
	}
}

func (r *Runner) saveNotification(logger *zap.Logger, runID string, sendErr error) {
	if r.history == nil {
		return
	}
	entry := models.NotificationEntry{
		RunID:   runID,
		SentAt:  r.now(),
		Success: sendErr == nil,
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
	}
	if err := r.history.SaveNotification(entry); err != nil {
		logger.Warn("failed to save notification outcome", zap.Error(err))
	}
}
