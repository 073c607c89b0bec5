package alert

import "go.uber.org/zap"

// performMaintenance prunes old history after a run
func (r *Runner) performMaintenance(logger *zap.Logger) {
	if r.history == nil || r.opts.RetentionDays <= 0 {
		return
	}
	if err := r.history.Prune(r.opts.RetentionDays); err != nil {
		logger.Warn("failed to prune history", zap.Error(err))
	}
}
