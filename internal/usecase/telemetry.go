package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/git-tracker/internal/domain"
)

// SummarizeHistory derives telemetry figures from chronologically ordered history points.
func SummarizeHistory(points []domain.HistoryPoint) domain.TelemetryStats {
	if len(points) == 0 {
		return domain.TelemetryStats{}
	}
	views := make(stats.Float64Data, 0, len(points))
	clones := make(stats.Float64Data, 0, len(points))
	for _, p := range points {
		views = append(views, float64(p.View))
		clones = append(clones, float64(p.Clones))
	}

	out := domain.TelemetryStats{Samples: len(points)}
	first, last := points[0].Stars, points[len(points)-1].Stars
	out.StarsGrowth = last - first
	if first > 0 {
		pct, _ := stats.Round(float64(out.StarsGrowth)/float64(first)*100, 2)
		out.StarsGrowthPct = pct
	}
	// Errors below only occur on empty input, which is handled above.
	out.MeanViews, _ = stats.Mean(views)
	out.MeanViews, _ = stats.Round(out.MeanViews, 2)
	out.PeakViews, _ = stats.Max(views)
	out.MedianClones, _ = stats.Median(clones)
	return out
}
