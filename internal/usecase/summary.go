package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

// SummaryView is everything the AI summary page renders.
type SummaryView struct {
	Platform domain.Platform
	Lookup   resource.Snapshot[*domain.Repo]
	Analysis resource.Snapshot[domain.AnalysisResult]
}

// Summary is the use case behind the AI summary page. Every platform
// switch issues a fresh generation; results are not cached per platform.
// Responses are fenced so only the newest request's answer is shown.
type Summary struct {
	tracker gateway.Tracker
	logger  *log.Logger
	id      int

	lookup   *resource.Resource[*domain.Repo]
	analysis *resource.Resource[domain.AnalysisResult]

	mu       sync.Mutex
	platform domain.Platform
}

// NewSummary creates the summary page for repo id, starting on platform.
func NewSummary(tracker gateway.Tracker, id int, platform domain.Platform, reporter resource.Reporter, logger *log.Logger) *Summary {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if platform == "" {
		platform = domain.PlatformLinkedIn
	}
	s := &Summary{tracker: tracker, logger: logger, id: id, platform: platform}
	s.lookup = resource.New("summary repo", s.fetchRepo,
		resource.WithEmpty(func(r *domain.Repo) bool { return r == nil }),
		resource.WithReporter[*domain.Repo](reporter),
		resource.WithLogger[*domain.Repo](logger),
	)
	s.analysis = resource.New("summary", s.generate,
		resource.WithReporter[domain.AnalysisResult](reporter),
		resource.WithLogger[domain.AnalysisResult](logger),
	)
	return s
}

func (s *Summary) fetchRepo(ctx context.Context) (*domain.Repo, error) {
	repo, err := findRepo(ctx, s.tracker, s.id)
	if errors.Is(err, ErrRepoNotFound) {
		return nil, nil
	}
	return repo, err
}

func (s *Summary) generate(ctx context.Context) (domain.AnalysisResult, error) {
	return s.generateFor(s.Platform())(ctx)
}

func (s *Summary) generateFor(platform domain.Platform) resource.Fetcher[domain.AnalysisResult] {
	return func(ctx context.Context) (domain.AnalysisResult, error) {
		result, err := s.tracker.GenerateSummary(ctx, s.id, platform)
		if err != nil {
			return domain.AnalysisResult{}, err
		}
		return *result, nil
	}
}

// Load looks the repo up and, when it exists, runs the first generation.
func (s *Summary) Load(ctx context.Context) error {
	repo, err := s.lookup.Load(ctx)
	if err != nil {
		return err
	}
	if repo == nil {
		s.logger.Printf("Usecase: repo #%d is not tracked, skipping generation.", s.id)
		return ErrRepoNotFound
	}
	s.mu.Lock()
	platform := s.platform
	ticket := s.analysis.Begin()
	s.mu.Unlock()
	_, err = s.analysis.Finish(ctx, ticket, s.generateFor(platform))
	return err
}

// Platform returns the selected platform.
func (s *Summary) Platform() domain.Platform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

// SetPlatform switches the platform and issues exactly one new generation.
// Selecting the platform that is already active does nothing.
func (s *Summary) SetPlatform(ctx context.Context, p domain.Platform) (domain.AnalysisResult, error) {
	if s.lookup.Snapshot().Value == nil {
		return domain.AnalysisResult{}, ErrRepoNotFound
	}
	s.mu.Lock()
	if p == s.platform {
		s.mu.Unlock()
		return s.analysis.Snapshot().Value, nil
	}
	run := s.switchLocked(p)
	s.mu.Unlock()
	return run(ctx)
}

// TogglePlatform selects the other platform right away and returns the
// generation for it, to be run later. Each call flips the selection, so
// rapid toggles issue one request per press and the last one wins.
// It returns nil when no repo has been found.
func (s *Summary) TogglePlatform() resource.Fetcher[domain.AnalysisResult] {
	if s.lookup.Snapshot().Value == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchLocked(s.platform.Other())
}

// switchLocked sets the platform and takes the ticket under s.mu so
// generation order always matches selection order.
func (s *Summary) switchLocked(p domain.Platform) resource.Fetcher[domain.AnalysisResult] {
	s.platform = p
	ticket := s.analysis.Begin()
	fetch := s.generateFor(p)
	return func(ctx context.Context) (domain.AnalysisResult, error) {
		return s.analysis.Finish(ctx, ticket, fetch)
	}
}

// Regenerate asks for a fresh analysis on the current platform.
// It returns resource.ErrBusy while a generation is already in flight.
func (s *Summary) Regenerate(ctx context.Context) (domain.AnalysisResult, error) {
	if s.lookup.Snapshot().Value == nil {
		return domain.AnalysisResult{}, ErrRepoNotFound
	}
	s.mu.Lock()
	if s.analysis.Snapshot().Loading() {
		s.mu.Unlock()
		return domain.AnalysisResult{}, resource.ErrBusy
	}
	platform := s.platform
	ticket := s.analysis.Begin()
	s.mu.Unlock()
	return s.analysis.Finish(ctx, ticket, s.generateFor(platform))
}

// Generating reports whether a generation is in flight.
func (s *Summary) Generating() bool {
	return s.analysis.Snapshot().Loading()
}

// View returns the current render state.
func (s *Summary) View() SummaryView {
	return SummaryView{
		Platform: s.Platform(),
		Lookup:   s.lookup.Snapshot(),
		Analysis: s.analysis.Snapshot(),
	}
}
