package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/git-tracker/internal/domain"
)

// mockTracker is a mock implementation of the gateway.Tracker interface.
// It allows us to simulate the backend without making real API calls.
type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) FetchDashboard(ctx context.Context) (*domain.DashboardSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardSnapshot), args.Error(1)
}

func (m *mockTracker) FetchRepos(ctx context.Context) ([]domain.Repo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repo), args.Error(1)
}

func (m *mockTracker) AddRepo(ctx context.Context, repoURL string) (*domain.Repo, error) {
	args := m.Called(ctx, repoURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repo), args.Error(1)
}

func (m *mockTracker) DeleteRepo(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTracker) Sync(ctx context.Context) ([]domain.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SyncResult), args.Error(1)
}

func (m *mockTracker) FetchHistory(ctx context.Context, id int) ([]domain.HistoryPoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryPoint), args.Error(1)
}

func (m *mockTracker) FetchCommits(ctx context.Context, id int) ([]domain.Commit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockTracker) GenerateSummary(ctx context.Context, id int, platform domain.Platform) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, id, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *mockTracker) FetchMetrics(ctx context.Context, id int) (*domain.MetricsReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MetricsReport), args.Error(1)
}

func (m *mockTracker) Health(ctx context.Context) (*domain.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Health), args.Error(1)
}

// mockUpstream is a mock implementation of the gateway.Upstream interface.
type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) VerifyRepository(ctx context.Context, owner, name string) (*domain.UpstreamRepo, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UpstreamRepo), args.Error(1)
}
