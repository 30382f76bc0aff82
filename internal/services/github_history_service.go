package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// GitHubHistoryService reads developer identities of a repository through the GitHub API
type GitHubHistoryService struct {
	client      *github.Client
	rateLimiter *rate.Limiter
}

// NewGitHubHistoryService creates the service. An empty token uses
// unauthenticated access; rateLimit is requests per second.
func NewGitHubHistoryService(token string, rateLimit int) *GitHubHistoryService {
	if rateLimit < 1 {
		rateLimit = 1
	}
	return &GitHubHistoryService{
		client:      createGitHubClient(token),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
	}
}

// createGitHubClient creates a GitHub client with the provided token
func createGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return github.NewClient(tc)
}

// ParseRepositorySlug splits "owner/name" into its parts
func ParseRepositorySlug(slug string) (string, string, error) {
	owner, name, found := strings.Cut(strings.Trim(slug, "/"), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", slug)
	}
	return owner, name, nil
}

// CollectDevelopers returns every distinct commit author and committer
// identity of owner/name, sorted by name then email
func (s *GitHubHistoryService) CollectDevelopers(ctx context.Context, owner, name string) ([]models.Developer, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var devs []models.Developer
	pages := 0
	for {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		commits, resp, err := s.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("repository %s/%s not found: %w", owner, name, err)
			}
			return nil, fmt.Errorf("failed to list commits: %w", err)
		}
		pages++

		for _, commit := range commits {
			author := commit.GetCommit().GetAuthor()
			committer := commit.GetCommit().GetCommitter()
			devs = append(devs,
				models.Developer{Name: author.GetName(), Email: author.GetEmail()},
				models.Developer{Name: committer.GetName(), Email: committer.GetEmail()},
			)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	unique := models.UniqueDevelopers(devs)

	logger.WithFields(logrus.Fields{
		"repository": owner + "/" + name,
		"pages":      pages,
		"developers": len(unique),
	}).Info("Collected developer identities from GitHub")

	return unique, nil
}
