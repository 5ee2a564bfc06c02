package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

// stubTracker is an in-memory backend.
type stubTracker struct {
	mu       sync.Mutex
	repos    []domain.Repo
	nextID   int
	addErr   error
	addCalls int
	// failLoads makes FetchDashboard fail once repos reach this count.
	failLoads int
	// hold blocks FetchDashboard until it is closed.
	hold chan struct{}
	deleted  []int
	syncs    int
	platform []domain.Platform
}

func newStubTracker(repos ...domain.Repo) *stubTracker {
	return &stubTracker{repos: repos, nextID: 100}
}

func (s *stubTracker) FetchDashboard(context.Context) (*domain.DashboardSnapshot, error) {
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoads > 0 && len(s.repos) >= s.failLoads {
		return nil, errors.New("connection reset")
	}
	snap := &domain.DashboardSnapshot{TotalRepos: len(s.repos), Repos: append([]domain.Repo(nil), s.repos...)}
	for _, r := range s.repos {
		snap.TotalStars += r.Stars
	}
	return snap, nil
}

func (s *stubTracker) FetchRepos(context.Context) ([]domain.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Repo(nil), s.repos...), nil
}

func (s *stubTracker) AddRepo(_ context.Context, repoURL string) (*domain.Repo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.addErr != nil {
		return nil, s.addErr
	}
	owner, name, err := domain.ParseRepoURL(repoURL)
	if err != nil {
		return nil, &gateway.APIError{StatusCode: http.StatusBadRequest, Message: "Invalid GitHub URL"}
	}
	s.nextID++
	repo := domain.Repo{ID: s.nextID, URL: repoURL, Owner: owner, Name: name}
	s.repos = append(s.repos, repo)
	return &repo, nil
}

func (s *stubTracker) DeleteRepo(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	kept := s.repos[:0]
	for _, r := range s.repos {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.repos = kept
	return nil
}

func (s *stubTracker) Sync(context.Context) ([]domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncs++
	results := make([]domain.SyncResult, 0, len(s.repos))
	for _, r := range s.repos {
		results = append(results, domain.SyncResult{Repo: r.Owner + "/" + r.Name, Status: "success"})
	}
	return results, nil
}

func (s *stubTracker) FetchHistory(context.Context, int) ([]domain.HistoryPoint, error) {
	return []domain.HistoryPoint{{Stars: 10, View: 4}, {Stars: 12, View: 6}}, nil
}

func (s *stubTracker) FetchCommits(context.Context, int) ([]domain.Commit, error) {
	return []domain.Commit{{SHA: "abcdef1234", Commit: domain.CommitInfo{Message: "Initial commit\n\nbody", Author: domain.CommitAuthor{Name: "octocat"}}}}, nil
}

func (s *stubTracker) GenerateSummary(_ context.Context, _ int, p domain.Platform) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platform = append(s.platform, p)
	return &domain.AnalysisResult{Summary: "Growing fast.", Post: "post for " + string(p), SocialType: p}, nil
}

func (s *stubTracker) FetchMetrics(context.Context, int) (*domain.MetricsReport, error) {
	return nil, nil
}

func (s *stubTracker) Health(context.Context) (*domain.Health, error) {
	return &domain.Health{Status: "healthy"}, nil
}

func newTestApp(tracker gateway.Tracker) *App {
	return NewApp(Options{Tracker: tracker, Context: context.Background()})
}

// run executes cmd and feeds its message back into the app.
func run(t *testing.T, a *App, cmd tea.Cmd) *App {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	model, _ := a.Update(cmd())
	return model.(*App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, s string) tea.Cmd {
	_, cmd := a.Update(key(s))
	return cmd
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.Update(key(string(r)))
	}
}

func foobar() domain.Repo {
	return domain.Repo{ID: 1, Owner: "foo", Name: "bar", Stars: 1200}
}

func TestDashboardStates(t *testing.T) {
	t.Run("empty backend renders the no-nodes state", func(t *testing.T) {
		a := newTestApp(newStubTracker())
		a = run(t, a, a.openDashboard())
		assert.Contains(t, a.View(), "No nodes tracked yet")
	})

	t.Run("repos are listed with grouped numbers", func(t *testing.T) {
		a := newTestApp(newStubTracker(foobar(), domain.Repo{ID: 2, Owner: "acme", Name: "widgets"}))
		a = run(t, a, a.openDashboard())
		view := a.View()
		assert.Contains(t, view, "foo / bar")
		assert.Contains(t, view, "acme / widgets")
		assert.Contains(t, view, "1,200")
	})
}

func TestDashboardLoadingStates(t *testing.T) {
	t.Run("before the first load runs", func(t *testing.T) {
		a := newTestApp(newStubTracker(foobar()))
		load := a.openDashboard()

		view := a.View()
		assert.Contains(t, view, "Loading nodes…")
		assert.NotContains(t, view, "No nodes match the filter.")

		a = run(t, a, load)
		assert.Contains(t, a.View(), "foo / bar")
	})

	t.Run("reloading an empty dashboard", func(t *testing.T) {
		tracker := newStubTracker()
		a := newTestApp(tracker)
		a = run(t, a, a.openDashboard())
		require.Contains(t, a.View(), "No nodes tracked yet")

		hold := make(chan struct{})
		tracker.mu.Lock()
		tracker.hold = hold
		tracker.mu.Unlock()
		done := make(chan tea.Msg)
		reload := press(a, "r")
		go func() { done <- reload() }()
		require.Eventually(t, func() bool { return a.dash.uc.Snapshot().Loading() }, time.Second, 5*time.Millisecond)

		view := a.View()
		assert.Contains(t, view, "Loading nodes…")
		assert.NotContains(t, view, "No nodes match the filter.")

		close(hold)
		a.Update(<-done)
		assert.Contains(t, a.View(), "No nodes tracked yet")
	})
}

func TestDashboardFilter(t *testing.T) {
	a := newTestApp(newStubTracker(foobar(), domain.Repo{ID: 2, Owner: "acme", Name: "widgets"}))
	a = run(t, a, a.openDashboard())

	press(a, "/")
	typeText(a, "WID")
	press(a, "enter")

	view := a.View()
	assert.Contains(t, view, "acme / widgets")
	assert.NotContains(t, view, "foo / bar")
	assert.Equal(t, "WID", a.dash.uc.Filter())
}

func TestDashboardAddRepo(t *testing.T) {
	t.Run("blank submit sends nothing", func(t *testing.T) {
		tracker := newStubTracker()
		a := newTestApp(tracker)
		a = run(t, a, a.openDashboard())

		press(a, "a")
		typeText(a, "   ")
		a = run(t, a, press(a, "enter"))

		assert.Zero(t, tracker.addCalls)
		assert.Empty(t, a.dash.addErr)
		assert.Empty(t, a.banner)
	})

	t.Run("accepted repo appears after the refetch", func(t *testing.T) {
		tracker := newStubTracker()
		a := newTestApp(tracker)
		a = run(t, a, a.openDashboard())

		press(a, "a")
		typeText(a, "https://github.com/foo/bar")
		a = run(t, a, press(a, "enter"))

		assert.Equal(t, 1, tracker.addCalls)
		assert.Equal(t, focusList, a.dash.focus)
		assert.Contains(t, a.View(), "foo / bar")
	})

	t.Run("rejection is shown inline and on the banner", func(t *testing.T) {
		tracker := newStubTracker()
		tracker.addErr = &gateway.APIError{StatusCode: http.StatusBadRequest, Message: "Repository already tracked"}
		a := newTestApp(tracker)
		a = run(t, a, a.openDashboard())

		press(a, "a")
		typeText(a, "https://github.com/foo/bar")
		a = run(t, a, press(a, "enter"))
		assert.Equal(t, "Repository already tracked", a.dash.addErr)

		a = run(t, a, a.waitForReport())
		assert.Equal(t, "dashboard: add repo failed: Repository already tracked", a.banner)
		assert.Contains(t, a.View(), "Repository already tracked")

		press(a, "esc")
		a.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
		assert.Empty(t, a.banner)
	})
}

func TestDashboardAddRepoRefreshFails(t *testing.T) {
	tracker := newStubTracker()
	tracker.failLoads = 1
	a := newTestApp(tracker)
	a = run(t, a, a.openDashboard())

	press(a, "a")
	typeText(a, "https://github.com/foo/bar")
	a = run(t, a, press(a, "enter"))

	assert.Equal(t, 1, tracker.addCalls)
	assert.Equal(t, focusList, a.dash.focus)
	assert.Empty(t, a.dash.addErr)
	assert.Empty(t, a.dash.add.Value())

	a = run(t, a, a.waitForReport())
	assert.Equal(t, "dashboard: load failed: connection reset", a.banner)
}

func TestDashboardDeleteNeedsConfirmation(t *testing.T) {
	tracker := newStubTracker(foobar())
	a := newTestApp(tracker)
	a = run(t, a, a.openDashboard())

	press(a, "d")
	assert.Contains(t, a.View(), "Delete foo / bar? (y/n)")
	assert.Nil(t, press(a, "n"))
	assert.Empty(t, tracker.deleted)

	press(a, "d")
	a = run(t, a, press(a, "y"))
	assert.Equal(t, []int{1}, tracker.deleted)
	assert.Contains(t, a.View(), "No nodes tracked yet")
}

func TestDashboardSync(t *testing.T) {
	tracker := newStubTracker(foobar())
	a := newTestApp(tracker)
	a = run(t, a, a.openDashboard())

	a = run(t, a, press(a, "s"))
	assert.Equal(t, 1, tracker.syncs)
	assert.Len(t, a.dash.lastSync, 1)
	assert.Contains(t, a.View(), "Last sync: 1 nodes")
}

func TestDetailPage(t *testing.T) {
	t.Run("known node", func(t *testing.T) {
		a := newTestApp(newStubTracker(foobar()))
		a = run(t, a, a.openDashboard())
		a = run(t, a, press(a, "enter"))

		require.Equal(t, stateDetail, a.state)
		view := a.View()
		assert.Contains(t, view, "foo / bar")
		assert.Contains(t, view, "abcdef1")
		assert.Contains(t, view, "Initial commit")
		assert.NotContains(t, view, "body")

		press(a, "esc")
		assert.Equal(t, stateDashboard, a.state)
	})

	t.Run("unknown node", func(t *testing.T) {
		a := newTestApp(newStubTracker(foobar()))
		a = run(t, a, a.openDetail(42))
		assert.Contains(t, a.View(), "Node not found.")
		assert.Empty(t, a.banner)
	})
}

func TestSummaryPlatformSwitch(t *testing.T) {
	tracker := newStubTracker(foobar())
	a := newTestApp(tracker)
	a = run(t, a, a.openDashboard())
	a = run(t, a, press(a, "g"))

	require.Equal(t, stateSummary, a.state)
	assert.Contains(t, a.View(), "post for linkedin")

	a = run(t, a, press(a, "tab"))
	assert.Contains(t, a.View(), "post for x")
	assert.Equal(t, []domain.Platform{domain.PlatformLinkedIn, domain.PlatformX}, tracker.platform)

	a = run(t, a, press(a, "r"))
	assert.Len(t, tracker.platform, 3)

	press(a, "esc")
	assert.Equal(t, stateDashboard, a.state)
}

func TestSummaryRapidToggle(t *testing.T) {
	tracker := newStubTracker(foobar())
	a := newTestApp(tracker)
	a = run(t, a, a.openSummary(1))

	// Both presses land before either request runs.
	first := press(a, "tab")
	second := press(a, "tab")
	assert.Equal(t, domain.PlatformLinkedIn, a.summary.Platform())

	a = run(t, a, second)
	a = run(t, a, first)

	assert.Equal(t, []domain.Platform{domain.PlatformLinkedIn, domain.PlatformLinkedIn, domain.PlatformX}, tracker.platform)
	assert.Equal(t, domain.PlatformLinkedIn, a.summary.Platform())
	assert.Contains(t, a.View(), "post for linkedin")
	assert.Empty(t, a.banner)
}

func TestOnboardingFlow(t *testing.T) {
	tracker := newStubTracker()
	a := newTestApp(tracker)
	assert.Nil(t, a.openOnboarding())
	assert.Contains(t, a.View(), "STEP 1 OF 3")

	a = run(t, a, press(a, "enter"))
	require.Equal(t, usecase.StepConnect, a.onboard.uc.Step())

	// Blank input is a no-op.
	a = run(t, a, press(a, "enter"))
	assert.Equal(t, usecase.StepConnect, a.onboard.uc.Step())
	assert.Zero(t, tracker.addCalls)

	typeText(a, "github.com/foo")
	a = run(t, a, press(a, "enter"))
	assert.Equal(t, usecase.StepConnect, a.onboard.uc.Step())
	assert.Equal(t, "Invalid GitHub URL", a.onboard.err)

	a.onboard.input.SetValue("https://github.com/foo/bar")
	a = run(t, a, press(a, "enter"))
	require.Equal(t, usecase.StepLinked, a.onboard.uc.Step())
	assert.Contains(t, a.View(), "Connected foo / bar")

	// Finishing the wizard lands on the dashboard.
	_, cmd := a.Update(key("enter"))
	model, next := a.Update(cmd())
	a = model.(*App)
	require.Equal(t, stateDashboard, a.state)
	a = run(t, a, next)
	assert.True(t, strings.Contains(a.View(), "foo / bar"))
}
