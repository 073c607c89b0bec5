package report

import (
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	barWidth   = 30
	barSpacing = 10
)

// generateChangesChart renders detected IP changes per day as a bar chart.
// Nothing is written when there is no history for the period.
func (g *Generator) generateChangesChart(outputDir string, days int) error {
	daily, err := g.history.ChangesPerDay(days)
	if err != nil {
		return err
	}
	if len(daily) == 0 {
		return nil
	}

	values := make([]chart.Value, 0, len(daily))
	maxChanges := 1
	for _, d := range daily {
		values = append(values, chart.Value{
			Label: d.Date,
			Value: float64(d.Changes),
			Style: chart.Style{
				FillColor:   chart.GetDefaultColor(0),
				StrokeColor: chart.GetDefaultColor(0),
			},
		})
		if d.Changes > maxChanges {
			maxChanges = d.Changes
		}
	}

	width := len(values)*(barWidth+barSpacing) + 200
	if width < 600 {
		width = 600
	}

	graph := chart.BarChart{
		Title: "IP Address Changes per Day",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:      width,
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis: chart.Style{
			StrokeColor: drawing.ColorBlack,
			FontSize:    8,
		},
		YAxis: chart.YAxis{
			Name: "Changes",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxChanges),
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Bars: values,
	}

	filename := filepath.Join(outputDir, "changes_per_day.png")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
