package services

import (
	"context"
	"os/exec"
	"testing"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitLog(t *testing.T) {
	output := []byte(
		"John Smith\x1fjohn@example.com\x1fGitHub\x1fnoreply@github.com\n" +
			"Jon Smith\x1fj@example.com\x1fJon Smith\x1fj@example.com\n" +
			"\n" +
			"broken line without separators\n" +
			"John Smith\x1fjohn@example.com\x1fGitHub\x1fnoreply@github.com\r\n",
	)

	devs, err := parseGitLog(output)

	require.NoError(t, err)
	assert.Equal(t, []models.Developer{
		{Name: "GitHub", Email: "noreply@github.com"},
		{Name: "John Smith", Email: "john@example.com"},
		{Name: "Jon Smith", Email: "j@example.com"},
	}, devs)
}

func TestParseGitLogKeepsEmptyFields(t *testing.T) {
	devs, err := parseGitLog([]byte("\x1f\x1fBot\x1fbot@example.com\n"))

	require.NoError(t, err)
	assert.Equal(t, []models.Developer{
		{Name: "", Email: ""},
		{Name: "Bot", Email: "bot@example.com"},
	}, devs)
}

func TestCollectDevelopersFromRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(cmd.Environ(),
			"GIT_AUTHOR_NAME=Tomás Arribas", "GIT_AUTHOR_EMAIL=tomas@example.com",
			"GIT_COMMITTER_NAME=CI Bot", "GIT_COMMITTER_EMAIL=ci@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-q")
	run("commit", "-q", "--allow-empty", "-m", "first")

	devs, err := NewHistoryService().CollectDevelopers(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []models.Developer{
		{Name: "CI Bot", Email: "ci@example.com"},
		{Name: "Tomás Arribas", Email: "tomas@example.com"},
	}, devs)
}

func TestCollectDevelopersOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	_, err := NewHistoryService().CollectDevelopers(context.Background(), t.TempDir())

	assert.Error(t, err)
}

func TestUniqueDevelopers(t *testing.T) {
	devs := models.UniqueDevelopers([]models.Developer{
		{Name: "b", Email: "2"},
		{Name: "a", Email: "9"},
		{Name: "b", Email: "1"},
		{Name: "a", Email: "9"},
	})

	assert.Equal(t, []models.Developer{
		{Name: "a", Email: "9"},
		{Name: "b", Email: "1"},
		{Name: "b", Email: "2"},
	}, devs)
}
