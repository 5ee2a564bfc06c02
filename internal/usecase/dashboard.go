package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

// Action names used for busy tracking and reports.
const (
	ActionAdd      = "add repo"
	ActionDelete   = "delete repo"
	ActionSync     = "sync"
	ActionGenerate = "generate summary"
	ActionConnect  = "connect repo"
)

// ErrEmptyRepoURL is returned, without any request being sent, when the
// add-repo form is submitted blank.
var ErrEmptyRepoURL = errors.New("repository URL is empty")

// Dashboard is the use case behind the dashboard page.
type Dashboard struct {
	tracker gateway.Tracker
	logger  *log.Logger
	res     *resource.Resource[domain.DashboardSnapshot]

	mu     sync.Mutex
	filter string
}

// NewDashboard creates a Dashboard. Nothing is fetched until Load.
func NewDashboard(tracker gateway.Tracker, reporter resource.Reporter, logger *log.Logger) *Dashboard {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := &Dashboard{tracker: tracker, logger: logger}
	d.res = resource.New("dashboard", d.fetch,
		resource.WithEmpty(func(s domain.DashboardSnapshot) bool { return len(s.Repos) == 0 }),
		resource.WithReporter[domain.DashboardSnapshot](reporter),
		resource.WithLogger[domain.DashboardSnapshot](logger),
	)
	return d
}

func (d *Dashboard) fetch(ctx context.Context) (domain.DashboardSnapshot, error) {
	snap, err := d.tracker.FetchDashboard(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}
	return *snap, nil
}

// Load fetches the dashboard snapshot.
func (d *Dashboard) Load(ctx context.Context) (domain.DashboardSnapshot, error) {
	return d.res.Load(ctx)
}

// Snapshot returns the current render state.
func (d *Dashboard) Snapshot() resource.Snapshot[domain.DashboardSnapshot] {
	return d.res.Snapshot()
}

// SetFilter sets the name/owner filter.
func (d *Dashboard) SetFilter(filter string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = filter
}

// Filter returns the current filter text.
func (d *Dashboard) Filter() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// Filtered returns the repos of the latest snapshot that match the filter.
// It is recomputed on every call.
func (d *Dashboard) Filtered() []domain.Repo {
	return domain.FilterRepos(d.res.Snapshot().Value.Repos, d.Filter())
}

// AddRepo starts tracking repoURL and refreshes the snapshot on success.
// A blank URL is a no-op that returns ErrEmptyRepoURL. When the backend
// accepts the repo but the refresh fails, both the repo and the refresh
// error are returned.
func (d *Dashboard) AddRepo(ctx context.Context, repoURL string) (*domain.Repo, error) {
	repoURL = strings.TrimSpace(repoURL)
	if repoURL == "" {
		return nil, ErrEmptyRepoURL
	}
	var added *domain.Repo
	err := d.res.Mutate(ctx, ActionAdd, func(ctx context.Context) error {
		repo, err := d.tracker.AddRepo(ctx, repoURL)
		if err != nil {
			return err
		}
		added = repo
		return nil
	})
	if added != nil {
		d.logger.Printf("Usecase: now tracking %s.", repoURL)
	}
	return added, err
}

// DeleteRepo stops tracking a repo. The list only changes through the
// refetch that follows a successful delete.
func (d *Dashboard) DeleteRepo(ctx context.Context, id int) error {
	return d.res.Mutate(ctx, deleteAction(id), func(ctx context.Context) error {
		return d.tracker.DeleteRepo(ctx, id)
	})
}

// Deleting reports whether a delete for id is in flight.
func (d *Dashboard) Deleting(id int) bool {
	return d.res.Busy(deleteAction(id))
}

func deleteAction(id int) string {
	return ActionDelete + " #" + strconv.Itoa(id)
}

// Sync asks the backend to refresh every repo, then refetches.
func (d *Dashboard) Sync(ctx context.Context) ([]domain.SyncResult, error) {
	var results []domain.SyncResult
	err := d.res.Mutate(ctx, ActionSync, func(ctx context.Context) error {
		r, err := d.tracker.Sync(ctx)
		if err != nil {
			return err
		}
		results = r
		return nil
	})
	return results, err
}

// Syncing reports whether a sync is in flight.
func (d *Dashboard) Syncing() bool { return d.res.Busy(ActionSync) }

// Adding reports whether an add is in flight.
func (d *Dashboard) Adding() bool { return d.res.Busy(ActionAdd) }
