// Package usecase contains the business logic of the application: one
// synchronizer per page, each backed by a resource.Resource.
package usecase

import (
	"context"
	"errors"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

// ErrRepoNotFound is returned when an id is not among the tracked repos.
var ErrRepoNotFound = errors.New("repository node not found")

// RepoDetail is the use case behind the repo detail page.
// It orchestrates the dependent fetches for a single node.
type RepoDetail struct {
	tracker gateway.Tracker
	logger  *log.Logger
	id      int
	res     *resource.Resource[domain.RepoDetail]
}

// NewRepoDetail creates a RepoDetail for the repo with the given id.
func NewRepoDetail(tracker gateway.Tracker, id int, reporter resource.Reporter, logger *log.Logger) *RepoDetail {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := &RepoDetail{tracker: tracker, logger: logger, id: id}
	d.res = resource.New("repo detail", d.fetch,
		resource.WithEmpty(func(v domain.RepoDetail) bool { return v.Repo == nil }),
		resource.WithReporter[domain.RepoDetail](reporter),
		resource.WithLogger[domain.RepoDetail](logger),
	)
	return d
}

// ID returns the repo id this page shows.
func (d *RepoDetail) ID() int { return d.id }

// Load performs the page's fetch sequence: the repo list first, then the
// history and commits for the matching repo concurrently. An unknown id
// yields an empty result rather than an error.
func (d *RepoDetail) Load(ctx context.Context) (domain.RepoDetail, error) {
	return d.res.Load(ctx)
}

// Snapshot returns the current render state.
func (d *RepoDetail) Snapshot() resource.Snapshot[domain.RepoDetail] {
	return d.res.Snapshot()
}

func (d *RepoDetail) fetch(ctx context.Context) (domain.RepoDetail, error) {
	d.logger.Printf("Usecase: loading detail for repo #%d...", d.id)
	repo, err := findRepo(ctx, d.tracker, d.id)
	if errors.Is(err, ErrRepoNotFound) {
		d.logger.Printf("Usecase: repo #%d is not tracked.", d.id)
		return domain.RepoDetail{}, nil
	}
	if err != nil {
		return domain.RepoDetail{}, err
	}

	var history []domain.HistoryPoint
	var commits []domain.Commit

	// Use an errgroup to fetch the dependent resources concurrently.
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		history, err = d.tracker.FetchHistory(egCtx, d.id)
		return err
	})

	eg.Go(func() error {
		var err error
		commits, err = d.tracker.FetchCommits(egCtx, d.id)
		return err
	})

	if err := eg.Wait(); err != nil {
		return domain.RepoDetail{}, err
	}
	d.logger.Printf("Usecase: repo #%d has %d history points and %d commits.", d.id, len(history), len(commits))

	return domain.RepoDetail{
		Repo:      repo,
		History:   history,
		Commits:   commits,
		Telemetry: SummarizeHistory(history),
	}, nil
}

// findRepo fetches the repo list and picks the entry with the given id.
func findRepo(ctx context.Context, tracker gateway.Tracker, id int) (*domain.Repo, error) {
	repos, err := tracker.FetchRepos(ctx)
	if err != nil {
		return nil, err
	}
	for i := range repos {
		if repos[i].ID == id {
			repo := repos[i]
			return &repo, nil
		}
	}
	return nil, ErrRepoNotFound
}
