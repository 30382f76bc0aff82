package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/pkg/logger"
)

// fieldSeparator splits author and committer fields in git log output
const fieldSeparator = "\x1f"

// HistoryService reads developer identities out of a local git repository
type HistoryService struct {
	gitBinary string
}

func NewHistoryService() *HistoryService {
	return &HistoryService{gitBinary: "git"}
}

// CollectDevelopers returns every distinct author and committer identity of the
// repository at repoPath, sorted by name then email
func (s *HistoryService) CollectDevelopers(ctx context.Context, repoPath string) ([]models.Developer, error) {
	cmd := exec.CommandContext(ctx, s.gitBinary, "log", "--all", "--format=%an%x1f%ae%x1f%cn%x1f%ce")
	cmd.Dir = repoPath

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git log failed in %s: %w (stderr: %s)", repoPath, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("git log failed in %s: %w", repoPath, err)
	}

	devs, err := parseGitLog(output)
	if err != nil {
		return nil, err
	}

	logger.WithField("repository", repoPath).Infof("Collected %d developer identities", len(devs))
	return devs, nil
}

// parseGitLog turns "author name, author email, committer name, committer email"
// lines into a deduplicated developer list
func parseGitLog(output []byte) ([]models.Developer, error) {
	var devs []models.Developer

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSeparator)
		if len(fields) != 4 {
			logger.Warnf("Skipping malformed git log line: %q", line)
			continue
		}
		devs = append(devs,
			models.Developer{Name: fields[0], Email: fields[1]},
			models.Developer{Name: fields[2], Email: fields[3]},
		)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read git log output: %w", err)
	}

	return models.UniqueDevelopers(devs), nil
}
