package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/alimgiray/devmatch/pkg/logger"
)

// CloneService keeps local copies of remote repositories whose history is read
type CloneService struct {
	cloneBasePath string
	token         string
}

// NewCloneService creates a clone service rooted at cloneBasePath. An empty
// token clones anonymously.
func NewCloneService(cloneBasePath, token string) *CloneService {
	return &CloneService{
		cloneBasePath: cloneBasePath,
		token:         token,
	}
}

// Prepare returns a local path holding the history of repo. Local directories
// are returned unchanged; remote URLs are cloned, or fetched when a clone exists.
func (s *CloneService) Prepare(ctx context.Context, repo string) (string, error) {
	if !IsRemoteRepository(repo) {
		info, err := os.Stat(repo)
		if err != nil {
			return "", fmt.Errorf("failed to open repository %s: %w", repo, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("repository %s is not a directory", repo)
		}
		return repo, nil
	}

	// Create clones directory if it doesn't exist
	if err := os.MkdirAll(s.cloneBasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create clones directory: %w", err)
	}

	repoClonePath := s.GetClonePath(repo)

	if s.isRepositoryCloned(repoClonePath) {
		return repoClonePath, s.fetchRepository(ctx, repoClonePath, repo)
	}
	return repoClonePath, s.cloneRepository(ctx, repoClonePath, repo)
}

// GetClonePath returns the local path where a repository is cloned
func (s *CloneService) GetClonePath(repo string) string {
	return filepath.Join(s.cloneBasePath, repositoryDirName(repo))
}

// IsRemoteRepository reports whether repo looks like a URL rather than a local path
func IsRemoteRepository(repo string) bool {
	if strings.HasPrefix(repo, "git@") {
		return true
	}
	u, err := url.Parse(repo)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git":
		return u.Host != ""
	}
	return false
}

// repositoryDirName derives "<host>_<owner>_<name>" from a repository URL
func repositoryDirName(repo string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(repo, "/"), ".git")
	if strings.HasPrefix(trimmed, "git@") {
		trimmed = "ssh://" + strings.Replace(strings.TrimPrefix(trimmed, "git@"), ":", "/", 1)
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return path.Base(trimmed)
	}

	parts := []string{u.Hostname()}
	for _, part := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "_")
}

// isRepositoryCloned checks if a repository is already cloned
func (s *CloneService) isRepositoryCloned(repoPath string) bool {
	gitDir := filepath.Join(repoPath, ".git")
	info, err := os.Stat(gitDir)
	return err == nil && info.IsDir()
}

// authURL embeds the token into https URLs
func (s *CloneService) authURL(repo string) string {
	if s.token == "" || !strings.HasPrefix(repo, "https://") {
		return repo
	}
	return strings.Replace(repo, "https://", "https://"+s.token+"@", 1)
}

// cloneRepository performs a full clone without checking out a working tree
func (s *CloneService) cloneRepository(ctx context.Context, repoPath, repo string) error {
	// Remove directory if it exists but is not a git repo
	if err := os.RemoveAll(repoPath); err != nil {
		return fmt.Errorf("failed to clean repository directory: %w", err)
	}

	logger.WithField("repository", repo).Info("Cloning repository")

	if err := s.git(ctx, "", "clone", "--quiet", "--no-checkout", s.authURL(repo), repoPath); err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	// Keep the token out of the stored remote
	if err := s.git(ctx, repoPath, "remote", "set-url", "origin", repo); err != nil {
		return fmt.Errorf("failed to set remote URL: %w", err)
	}

	return nil
}

// fetchRepository updates every branch of an existing clone
func (s *CloneService) fetchRepository(ctx context.Context, repoPath, repo string) error {
	logger.WithField("repository", repo).Info("Fetching repository")

	err := s.git(ctx, repoPath, "fetch", "--quiet", "--prune", s.authURL(repo), "+refs/heads/*:refs/remotes/origin/*")
	if err != nil {
		return fmt.Errorf("failed to fetch repository: %w", err)
	}
	return nil
}

func (s *CloneService) git(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	// stdout may carry a report
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
