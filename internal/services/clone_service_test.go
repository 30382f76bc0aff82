package services

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemoteRepository(t *testing.T) {
	testCases := []struct {
		repo     string
		expected bool
	}{
		{repo: "https://github.com/twbs/bootstrap", expected: true},
		{repo: "http://git.example.com/team/project.git", expected: true},
		{repo: "ssh://git@github.com/twbs/bootstrap.git", expected: true},
		{repo: "git@github.com:twbs/bootstrap.git", expected: true},
		{repo: "./bootstrap", expected: false},
		{repo: "/srv/git/bootstrap", expected: false},
		{repo: "file:///srv/git/bootstrap", expected: false},
		{repo: "", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.repo, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsRemoteRepository(tc.repo))
		})
	}
}

func TestGetClonePath(t *testing.T) {
	service := NewCloneService("/tmp/clones", "")

	assert.Equal(t, filepath.Join("/tmp/clones", "github.com_twbs_bootstrap"),
		service.GetClonePath("https://github.com/twbs/bootstrap"))
	assert.Equal(t, filepath.Join("/tmp/clones", "github.com_twbs_bootstrap"),
		service.GetClonePath("https://github.com/twbs/bootstrap.git/"))
	assert.Equal(t, filepath.Join("/tmp/clones", "github.com_twbs_bootstrap"),
		service.GetClonePath("git@github.com:twbs/bootstrap.git"))
}

func TestAuthURL(t *testing.T) {
	assert.Equal(t, "https://secret@github.com/a/b",
		NewCloneService("", "secret").authURL("https://github.com/a/b"))
	assert.Equal(t, "git@github.com:a/b.git",
		NewCloneService("", "secret").authURL("git@github.com:a/b.git"))
	assert.Equal(t, "https://github.com/a/b",
		NewCloneService("", "").authURL("https://github.com/a/b"))
}

func TestPrepareLocalRepository(t *testing.T) {
	service := NewCloneService(t.TempDir(), "")
	dir := t.TempDir()

	path, err := service.Prepare(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, path)

	_, err = service.Prepare(context.Background(), filepath.Join(dir, "missing"))
	assert.Error(t, err)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = service.Prepare(context.Background(), file)
	assert.Error(t, err)
}

func TestCloneAndFetchRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	origin := t.TempDir()
	cmd := exec.Command("git", "init", "-q", origin)
	require.NoError(t, cmd.Run())
	cmd = exec.Command("git", "commit", "-q", "--allow-empty", "-m", "first")
	cmd.Dir = origin
	cmd.Env = append(cmd.Environ(),
		"GIT_AUTHOR_NAME=Ann", "GIT_AUTHOR_EMAIL=ann@example.com",
		"GIT_COMMITTER_NAME=Ann", "GIT_COMMITTER_EMAIL=ann@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	service := NewCloneService(t.TempDir(), "")
	clonePath := filepath.Join(service.cloneBasePath, "origin")

	require.NoError(t, service.cloneRepository(context.Background(), clonePath, origin))
	assert.True(t, service.isRepositoryCloned(clonePath))
	assert.NoError(t, service.fetchRepository(context.Background(), clonePath, origin))
}
