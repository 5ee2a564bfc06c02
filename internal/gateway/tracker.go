package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"

	"github.com/naka-gawa/git-tracker/internal/domain"
)

// DefaultBaseURL is where the tracker backend listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Tracker defines the behavior of a gateway to the git-tracker backend.
type Tracker interface {
	FetchDashboard(ctx context.Context) (*domain.DashboardSnapshot, error)
	FetchRepos(ctx context.Context) ([]domain.Repo, error)
	AddRepo(ctx context.Context, repoURL string) (*domain.Repo, error)
	DeleteRepo(ctx context.Context, id int) error
	Sync(ctx context.Context) ([]domain.SyncResult, error)
	FetchHistory(ctx context.Context, id int) ([]domain.HistoryPoint, error)
	FetchCommits(ctx context.Context, id int) ([]domain.Commit, error)
	GenerateSummary(ctx context.Context, id int, platform domain.Platform) (*domain.AnalysisResult, error)
	FetchMetrics(ctx context.Context, id int) (*domain.MetricsReport, error)
	Health(ctx context.Context) (*domain.Health, error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// TrackerGateway is the concrete implementation of the Tracker interface.
type TrackerGateway struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *log.Logger
}

// NewTrackerGateway creates a gateway for the backend at baseURL.
// A nil httpClient gets a client with the given timeout.
func NewTrackerGateway(baseURL string, httpClient *http.Client, timeout time.Duration, logger *log.Logger) (*TrackerGateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL %q must include scheme and host", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &TrackerGateway{baseURL: u, httpClient: httpClient, logger: logger}, nil
}

func (g *TrackerGateway) FetchDashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	var snap domain.DashboardSnapshot
	if err := g.do(ctx, http.MethodGet, "/api/dashboard", nil, &snap); err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	if snap.Repos == nil {
		snap.Repos = []domain.Repo{}
	}
	return &snap, nil
}

func (g *TrackerGateway) FetchRepos(ctx context.Context) ([]domain.Repo, error) {
	var body struct {
		Repos []domain.Repo `json:"repos"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/repos", nil, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch repos: %w", err)
	}
	if body.Repos == nil {
		return []domain.Repo{}, nil
	}
	return body.Repos, nil
}

func (g *TrackerGateway) AddRepo(ctx context.Context, repoURL string) (*domain.Repo, error) {
	g.logger.Printf("Adding repository %s", repoURL)
	req := map[string]string{"repo_url": repoURL}
	var body struct {
		Repo domain.Repo `json:"repo"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/repos", req, &body); err != nil {
		return nil, fmt.Errorf("failed to add repo: %w", err)
	}
	return &body.Repo, nil
}

func (g *TrackerGateway) DeleteRepo(ctx context.Context, id int) error {
	g.logger.Printf("Removing repository #%d", id)
	if err := g.do(ctx, http.MethodDelete, "/api/repos/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete repo %d: %w", id, err)
	}
	return nil
}

func (g *TrackerGateway) Sync(ctx context.Context) ([]domain.SyncResult, error) {
	g.logger.Println("Triggering backend sync...")
	var body struct {
		Results []domain.SyncResult `json:"results"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/sync", nil, &body); err != nil {
		return nil, fmt.Errorf("failed to sync: %w", err)
	}
	g.logger.Printf("Sync finished for %d repositories.", len(body.Results))
	return body.Results, nil
}

func (g *TrackerGateway) FetchHistory(ctx context.Context, id int) ([]domain.HistoryPoint, error) {
	var raw json.RawMessage
	if err := g.do(ctx, http.MethodGet, "/api/history/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch history for repo %d: %w", id, err)
	}
	points := []domain.HistoryPoint{}
	if !isJSONArray(raw) {
		return points, nil
	}
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("failed to decode history for repo %d: %w", id, err)
	}
	return points, nil
}

// FetchCommits decodes the GitHub commit list the backend proxies.
func (g *TrackerGateway) FetchCommits(ctx context.Context, id int) ([]domain.Commit, error) {
	var raw json.RawMessage
	if err := g.do(ctx, http.MethodGet, "/api/commits/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch commits for repo %d: %w", id, err)
	}
	commits := []domain.Commit{}
	if !isJSONArray(raw) {
		return commits, nil
	}
	var upstream []*github.RepositoryCommit
	if err := json.Unmarshal(raw, &upstream); err != nil {
		return nil, fmt.Errorf("failed to decode commits for repo %d: %w", id, err)
	}
	for _, rc := range upstream {
		if rc == nil {
			continue
		}
		commits = append(commits, toDomainCommit(rc))
	}
	return commits, nil
}

func toDomainCommit(rc *github.RepositoryCommit) domain.Commit {
	c := domain.Commit{SHA: rc.GetSHA(), HTMLURL: rc.GetHTMLURL()}
	if gc := rc.GetCommit(); gc != nil {
		c.Commit.Message = gc.GetMessage()
		if author := gc.GetAuthor(); author != nil {
			c.Commit.Author.Name = author.GetName()
			c.Commit.Author.Date = author.GetDate().Time
		}
	}
	return c
}

func (g *TrackerGateway) GenerateSummary(ctx context.Context, id int, platform domain.Platform) (*domain.AnalysisResult, error) {
	g.logger.Printf("Generating %s summary for repo #%d", platform, id)
	req := map[string]string{"social_type": string(platform)}
	var result domain.AnalysisResult
	if err := g.do(ctx, http.MethodPost, "/api/summary/"+strconv.Itoa(id), req, &result); err != nil {
		return nil, fmt.Errorf("failed to generate summary for repo %d: %w", id, err)
	}
	if result.SocialType == "" {
		result.SocialType = platform
	}
	return &result, nil
}

func (g *TrackerGateway) FetchMetrics(ctx context.Context, id int) (*domain.MetricsReport, error) {
	var report domain.MetricsReport
	if err := g.do(ctx, http.MethodGet, "/api/metrics/"+strconv.Itoa(id), nil, &report); err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for repo %d: %w", id, err)
	}
	return &report, nil
}

func (g *TrackerGateway) Health(ctx context.Context) (*domain.Health, error) {
	var h domain.Health
	if err := g.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, fmt.Errorf("failed to check health: %w", err)
	}
	return &h, nil
}

// do sends one request and decodes a 2xx JSON body into out.
// Non-2xx answers become *APIError using the backend's "error" field.
func (g *TrackerGateway) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	endpoint := g.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	g.logger.Printf("%s %s", method, endpoint.Path)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, data []byte) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(data, &body); err == nil {
		msg = strings.TrimSpace(body.Error)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
