// Package gateway provides the clients this application talks to: the
// git-tracker backend and, optionally, the GitHub API itself.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/git-tracker/internal/domain"
)

// ErrUpstreamNotFound is returned when GitHub has no such repository.
var ErrUpstreamNotFound = errors.New("repository not found on GitHub")

// Upstream defines the behavior of a gateway that checks repositories on GitHub.
type Upstream interface {
	VerifyRepository(ctx context.Context, owner, name string) (*domain.UpstreamRepo, error)
}

// GitHubGateway is the concrete implementation of the Upstream interface.
// It uses GraphQL when a token is available and the REST API otherwise,
// since GitHub's GraphQL endpoint rejects anonymous callers.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// repositoryQuery fetches the few fields onboarding needs.
type repositoryQuery struct {
	Repository struct {
		NameWithOwner  string
		StargazerCount int
		IsPrivate      bool
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields a REST-only, unauthenticated gateway.
func NewGitHubGateway(token string, logger *log.Logger) (*GitHubGateway, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	if token == "" {
		return &GitHubGateway{
			restClient: github.NewClient(&http.Client{Transport: rateLimitWaiter}),
			logger:     logger,
		}, nil
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// VerifyRepository confirms owner/name exists on GitHub.
func (g *GitHubGateway) VerifyRepository(ctx context.Context, owner, name string) (*domain.UpstreamRepo, error) {
	if g.graphqlClient != nil {
		return g.verifyGraphQL(ctx, owner, name)
	}
	return g.verifyREST(ctx, owner, name)
}

func (g *GitHubGateway) verifyREST(ctx context.Context, owner, name string) (*domain.UpstreamRepo, error) {
	g.logger.Printf("Verifying %s/%s via REST API...", owner, name)
	repo, resp, err := g.restClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", owner, name, ErrUpstreamNotFound)
		}
		return nil, fmt.Errorf("failed to get repository with REST API: %w", err)
	}
	return &domain.UpstreamRepo{
		FullName: repo.GetFullName(),
		Stars:    repo.GetStargazersCount(),
		Private:  repo.GetPrivate(),
	}, nil
}

func (g *GitHubGateway) verifyGraphQL(ctx context.Context, owner, name string) (*domain.UpstreamRepo, error) {
	g.logger.Printf("Verifying %s/%s via GraphQL API...", owner, name)
	var q repositoryQuery
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(name),
	}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repository: %w", err)
	}
	if q.Repository.NameWithOwner == "" {
		return nil, fmt.Errorf("%s/%s: %w", owner, name, ErrUpstreamNotFound)
	}
	return &domain.UpstreamRepo{
		FullName: q.Repository.NameWithOwner,
		Stars:    q.Repository.StargazerCount,
		Private:  q.Repository.IsPrivate,
	}, nil
}
