package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

// Step is a position in the onboarding wizard.
type Step int

const (
	StepWelcome Step = iota + 1
	StepConnect
	StepLinked
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepConnect:
		return "connect"
	case StepLinked:
		return "linked"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Onboarding is the three-step "connect your first repo" wizard.
type Onboarding struct {
	tracker  gateway.Tracker
	upstream gateway.Upstream
	reporter resource.Reporter
	logger   *log.Logger

	mu       sync.Mutex
	step     Step
	repoURL  string
	busy     bool
	repo     *domain.Repo
	verified *domain.UpstreamRepo
}

// NewOnboarding creates the wizard. upstream may be nil to skip the GitHub check.
func NewOnboarding(tracker gateway.Tracker, upstream gateway.Upstream, reporter resource.Reporter, logger *log.Logger) *Onboarding {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if reporter == nil {
		reporter = resource.Discard
	}
	return &Onboarding{
		tracker:  tracker,
		upstream: upstream,
		reporter: reporter,
		logger:   logger,
		step:     StepWelcome,
	}
}

// Step returns the current step.
func (o *Onboarding) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// SetURL stores the URL typed on the connect step.
func (o *Onboarding) SetURL(u string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.repoURL = u
}

// Connecting reports whether the connect request is in flight.
func (o *Onboarding) Connecting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Connected returns the repo added on the connect step, if any, and what
// GitHub reported about it when it was checked.
func (o *Onboarding) Connected() (*domain.Repo, *domain.UpstreamRepo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.repo, o.verified
}

// Next advances the wizard. On the connect step it adds the repo and only
// moves on when the backend accepts it; a blank URL is a no-op.
func (o *Onboarding) Next(ctx context.Context) (Step, error) {
	o.mu.Lock()
	step := o.step
	switch step {
	case StepWelcome, StepLinked:
		o.step++
		next := o.step
		o.mu.Unlock()
		return next, nil
	case StepDone:
		o.mu.Unlock()
		return StepDone, nil
	}
	repoURL := strings.TrimSpace(o.repoURL)
	if repoURL == "" {
		o.mu.Unlock()
		return step, ErrEmptyRepoURL
	}
	if o.busy {
		o.mu.Unlock()
		return step, resource.ErrBusy
	}
	o.busy = true
	o.mu.Unlock()

	repo, verified, err := o.connect(ctx, repoURL)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.busy = false
	if err != nil {
		o.reporter.Report(ActionConnect, err)
		return o.step, err
	}
	o.repo = repo
	o.verified = verified
	o.step = StepLinked
	return o.step, nil
}

func (o *Onboarding) connect(ctx context.Context, repoURL string) (*domain.Repo, *domain.UpstreamRepo, error) {
	var verified *domain.UpstreamRepo
	if o.upstream != nil {
		owner, name, err := domain.ParseRepoURL(repoURL)
		if err != nil {
			return nil, nil, err
		}
		verified, err = o.upstream.VerifyRepository(ctx, owner, name)
		if err != nil {
			return nil, nil, err
		}
		o.logger.Printf("Usecase: %s verified on GitHub (%d stars).", verified.FullName, verified.Stars)
	}
	repo, err := o.tracker.AddRepo(ctx, repoURL)
	if err != nil {
		return nil, nil, err
	}
	return repo, verified, nil
}
