package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router     *gin.Engine
	runService *services.MatchRunService
}

func newTestServer(t *testing.T) *testServer {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	evidenceRepo := repositories.NewMatchEvidenceRepository(db)
	matcher := services.NewMatchService(
		services.NewNormalizerService(),
		services.NewTextSimilarityService(),
		services.NewCommonPrefixSet("me", "github", "mail", "hi", "hello", "info", "contact"),
		2,
	)
	runService := services.NewMatchRunService(
		repositories.NewMatchRunRepository(db),
		evidenceRepo,
		services.NewJobService(repositories.NewJobRepository(db)),
		matcher,
	)
	mergeService := services.NewEmailMergeService(repositories.NewEmailMergeRepository(db), evidenceRepo)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	runHandler := NewRunHandler(runService, mergeService, services.NewReportService(), 0.9)
	router.GET("/health", NewHealthHandler(db).Health)
	router.POST("/runs", runHandler.CreateRun)
	router.GET("/runs", runHandler.ListRuns)
	router.GET("/runs/:id", runHandler.GetRun)
	router.DELETE("/runs/:id", runHandler.DeleteRun)
	router.GET("/runs/:id/matches", runHandler.GetMatches)
	router.POST("/runs/:id/matches/:evidence_id/accept", runHandler.AcceptMatch)
	router.GET("/runs/:id/merges", runHandler.ListMerges)
	router.DELETE("/merges/:id", runHandler.DeleteMerge)
	router.NoRoute(NewNotFoundHandler().NotFound)

	return &testServer{router: router, runService: runService}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var testDevelopers = []models.Developer{
	{Name: "John Smith", Email: "john@example.com"},
	{Name: "Jon Smith", Email: "j@example.com"},
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCreateRun(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/runs", gin.H{"source": "upload", "developers": testDevelopers})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Run models.MatchRun `json:"run"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.9, resp.Run.Threshold)
	assert.Equal(t, models.RunStatusPending, resp.Run.Status)

	w = s.do(t, http.MethodGet, "/runs/"+resp.Run.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/runs/"+resp.Run.ID+"/matches", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "matches are unavailable until the run completes")

	w = s.do(t, http.MethodGet, "/runs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.Run.ID)
}

func TestCreateRunValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"Threshold above one", gin.H{"threshold": 1.5, "developers": testDevelopers}},
		{"Threshold of zero", gin.H{"threshold": 0, "developers": testDevelopers}},
		{"Missing developers", gin.H{"threshold": 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/runs", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUnknownRun(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/runs/missing", "/runs/missing/matches", "/runs/missing/merges"} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w := s.do(t, http.MethodDelete, "/merges/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchesAndMerges(t *testing.T) {
	s := newTestServer(t)

	run, report, err := s.runService.RunNow(context.Background(), "test", 0.9, testDevelopers)
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)

	t.Run("JSON", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/runs/"+run.ID+"/matches", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got models.MatchReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Matches, 1)
		assert.Equal(t, "j@example.com", got.Matches[0].Email2)
	})

	t.Run("CSV", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/runs/"+run.ID+"/matches?format=csv", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "devs_similarity_t=0.9.csv")
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		assert.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "name_1,email_1,name_2,email_2"))
	})

	t.Run("XLSX", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/runs/"+run.ID+"/matches?format=xlsx", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
	})

	t.Run("Unknown format", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/runs/"+run.ID+"/matches?format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	evidenceID := report.Matches[0].ID
	w := s.do(t, http.MethodPost, "/runs/"+run.ID+"/matches/"+evidenceID+"/accept", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Merge models.EmailMerge `json:"merge"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "j@example.com", created.Merge.SourceEmail)
	assert.Equal(t, "john@example.com", created.Merge.TargetEmail)

	w = s.do(t, http.MethodPost, "/runs/"+run.ID+"/matches/"+evidenceID+"/accept", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/runs/"+run.ID+"/merges", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.Merge.ID)

	w = s.do(t, http.MethodDelete, "/merges/"+created.Merge.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/runs/"+run.ID+"/matches", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
