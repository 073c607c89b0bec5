package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ipalert/internal/models"
)

// Generator creates charts and summaries from the run history
type Generator struct {
	history models.History
	now     func() time.Time
	logger  *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(history models.History, logger *zap.Logger) *Generator {
	return &Generator{history: history, now: time.Now, logger: logger}
}

// GenerateReport writes a report covering the last days into a new
// timestamped directory below outputDir and returns that directory.
func (g *Generator) GenerateReport(outputDir string, days int) (string, error) {
	if days <= 0 {
		return "", fmt.Errorf("days must be positive")
	}

	timestamp := g.now().Format("2006-01-02_15-04-05")
	reportDir := filepath.Join(outputDir, fmt.Sprintf("ip_report_%s", timestamp))
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := g.generateChangesChart(reportDir, days); err != nil {
		g.logger.Warn("failed to generate changes chart", zap.Error(err))
	}

	if err := g.generateTextReport(reportDir, days); err != nil {
		return reportDir, fmt.Errorf("failed to generate text report: %w", err)
	}

	g.logger.Info("report generated", zap.String("dir", reportDir))
	return reportDir, nil
}
