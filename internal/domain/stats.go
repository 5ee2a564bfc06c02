// Package domain contains the core data structures and domain logic for the application.
package domain

// TelemetryStats summarizes a repository's history points.
// It is derived on the client and never sent to the backend.
type TelemetryStats struct {
	Samples        int     `json:"samples"`
	StarsGrowth    int     `json:"stars_growth"`
	StarsGrowthPct float64 `json:"stars_growth_pct"`
	MeanViews      float64 `json:"mean_views"`
	PeakViews      float64 `json:"peak_views"`
	MedianClones   float64 `json:"median_clones"`
}

// RepoDetail is everything the repo detail page shows for one node.
type RepoDetail struct {
	Repo      *Repo          `json:"repo"`
	History   []HistoryPoint `json:"history"`
	Commits   []Commit       `json:"commits"`
	Telemetry TelemetryStats `json:"telemetry"`
}
