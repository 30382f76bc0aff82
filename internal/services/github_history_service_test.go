package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHubHistoryService(t *testing.T, handler http.Handler) *GitHubHistoryService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service := NewGitHubHistoryService("", 1000)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	service.client.BaseURL = baseURL
	return service
}

func TestGitHubCollectDevelopersFollowsPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/twbs/bootstrap/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"sha":"b","commit":{
				"author":{"name":"Jon Smith","email":"j@example.com"},
				"committer":{"name":"John Smith","email":"john@example.com"}}}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
		fmt.Fprint(w, `[{"sha":"a","commit":{
			"author":{"name":"John Smith","email":"john@example.com"},
			"committer":{"name":"GitHub","email":"noreply@github.com"}}}]`)
	})

	service := newTestGitHubHistoryService(t, mux)

	devs, err := service.CollectDevelopers(context.Background(), "twbs", "bootstrap")

	require.NoError(t, err)
	assert.Equal(t, []models.Developer{
		{Name: "GitHub", Email: "noreply@github.com"},
		{Name: "John Smith", Email: "john@example.com"},
		{Name: "Jon Smith", Email: "j@example.com"},
	}, devs)
}

func TestGitHubCollectDevelopersNotFound(t *testing.T) {
	service := newTestGitHubHistoryService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	}))

	_, err := service.CollectDevelopers(context.Background(), "nobody", "nothing")

	assert.ErrorContains(t, err, "not found")
}

func TestParseRepositorySlug(t *testing.T) {
	owner, name, err := ParseRepositorySlug("twbs/bootstrap")
	require.NoError(t, err)
	assert.Equal(t, "twbs", owner)
	assert.Equal(t, "bootstrap", name)

	for _, slug := range []string{"", "twbs", "/bootstrap", "twbs/", "a/b/c"} {
		_, _, err := ParseRepositorySlug(slug)
		assert.Error(t, err, "slug %q should be rejected", slug)
	}
}
