package domain

import (
	"fmt"
	"strings"
	"time"
)

// Repo is a tracked repository ("node") as reported by the backend.
type Repo struct {
	ID            int     `json:"id"`
	URL           string  `json:"url"`
	Owner         string  `json:"owner"`
	Name          string  `json:"name"`
	AddedAt       string  `json:"added_at,omitempty"`
	LastChecked   *string `json:"last_checked"`
	Stars         int     `json:"stars"`
	Views         int     `json:"views"`
	Clones        int     `json:"clones"`
	Growth        string  `json:"growth,omitempty"`
	PreviousStars *int    `json:"previous_stars,omitempty"`
}

// FullName renders the repo the way list entries show it.
func (r Repo) FullName() string {
	return fmt.Sprintf("%s / %s", r.Owner, r.Name)
}

// StarDelta reports stars gained since the previous check.
// The second return value is false when the backend sent no previous count.
func (r Repo) StarDelta() (int, bool) {
	if r.PreviousStars == nil {
		return 0, false
	}
	return r.Stars - *r.PreviousStars, true
}

// DashboardSnapshot is the aggregated view of every tracked repo.
type DashboardSnapshot struct {
	TotalRepos  int    `json:"total_repos"`
	TotalStars  int    `json:"total_stars"`
	TotalViews  int    `json:"total_views"`
	TotalClones int    `json:"total_clones"`
	Repos       []Repo `json:"repos"`
	LastUpdated string `json:"last_updated"`
}

// HistoryPoint is one recorded telemetry sample.
type HistoryPoint struct {
	Stars       int    `json:"stars"`
	View        int    `json:"view"`
	UniqueViews int    `json:"unique_views"`
	Clones      int    `json:"clones"`
	UniqueClone int    `json:"unique_clone"`
	Timestamp   string `json:"timestamp"`
}

// CommitAuthor identifies who wrote a commit and when.
type CommitAuthor struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// CommitInfo is the git-level part of a commit.
type CommitInfo struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// Commit is an entry in a repository's recent commit timeline.
type Commit struct {
	SHA     string     `json:"sha"`
	Commit  CommitInfo `json:"commit"`
	HTMLURL string     `json:"html_url"`
}

// ShortSHA returns the first seven characters of the commit hash.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// Headline returns the first line of the commit message.
func (c Commit) Headline() string {
	msg := strings.TrimSpace(c.Commit.Message)
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return strings.TrimSpace(msg[:idx])
	}
	return msg
}

// Platform is the social network a generated post targets.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformX        Platform = "x"
)

// ParsePlatform accepts "linkedin" or "x" in any case.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformLinkedIn:
		return PlatformLinkedIn, nil
	case PlatformX:
		return PlatformX, nil
	}
	return "", fmt.Errorf("unknown platform %q (want linkedin or x)", s)
}

// Other returns the platform the toggle switches to.
func (p Platform) Other() Platform {
	if p == PlatformX {
		return PlatformLinkedIn
	}
	return PlatformX
}

// AnalysisResult is an AI summary plus the generated post ("payload").
type AnalysisResult struct {
	Summary    string   `json:"summary"`
	Post       string   `json:"post"`
	SocialType Platform `json:"social_type,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// SyncResult is the per-repo outcome of a manual sync.
type SyncResult struct {
	Repo    string `json:"repo"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the backend liveness report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// MetricCounts is the telemetry shape used by the metrics endpoint.
type MetricCounts struct {
	Stars        int `json:"stars"`
	Views        int `json:"views"`
	UniqueViews  int `json:"unique_views"`
	Clones       int `json:"clones"`
	UniqueClones int `json:"unique_clones"`
}

// MetricsReport is a fresh agent run for one repo.
// Previous is kept raw since the backend stores it in whatever shape the agent wrote.
type MetricsReport struct {
	Repo      Repo           `json:"repo"`
	Current   MetricCounts   `json:"current"`
	Previous  map[string]any `json:"previous"`
	Summary   string         `json:"summary"`
	Timestamp string         `json:"timestamp"`
}

// UpstreamRepo is what GitHub itself says about a repository.
type UpstreamRepo struct {
	FullName string `json:"full_name"`
	Stars    int    `json:"stars"`
	Private  bool   `json:"private"`
}
