package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	defaultRunListLimit = 50
	maxRunListLimit     = 500
)

type RunHandler struct {
	runService        *services.MatchRunService
	emailMergeService *services.EmailMergeService
	reportService     *services.ReportService
	defaultThreshold  float64
}

func NewRunHandler(runService *services.MatchRunService, emailMergeService *services.EmailMergeService,
	reportService *services.ReportService, defaultThreshold float64) *RunHandler {
	return &RunHandler{
		runService:        runService,
		emailMergeService: emailMergeService,
		reportService:     reportService,
		defaultThreshold:  defaultThreshold,
	}
}

// CreateRunRequest is the body of POST /runs
type CreateRunRequest struct {
	Source     string             `json:"source"`
	Threshold  *float64           `json:"threshold"`
	Developers []models.Developer `json:"developers" binding:"required"`
}

// CreateRun stores a developer list and queues it for matching
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	run, err := h.runService.Submit(req.Source, threshold, req.Developers)
	if err != nil {
		if errors.Is(err, models.ErrInvalidThreshold) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.WithError(err).Errorf("Failed to submit run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit run"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

// ListRuns returns the most recent runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit := defaultRunListLimit
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRunListLimit)
	}

	runs, err := h.runService.ListRuns(limit)
	if err != nil {
		logger.WithError(err).Errorf("Failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list runs"})
		return
	}
	if runs == nil {
		runs = []*models.MatchRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun returns a single run
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.runService.GetRun(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Run not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run})
}

// DeleteRun removes a run and everything recorded for it
func (h *RunHandler) DeleteRun(c *gin.Context) {
	if err := h.runService.DeleteRun(c.Param("id")); err != nil {
		h.respondError(c, err, "Run not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMatches returns the report of a run as JSON, CSV or XLSX
func (h *RunHandler) GetMatches(c *gin.Context) {
	format := services.ReportFormatJSON
	if value := c.Query("format"); value != "" {
		parsed, err := services.ParseReportFormat(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		format = parsed
	}

	run, report, err := h.runService.GetReport(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Run not found")
		return
	}

	if run.Status != models.RunStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Run has not completed",
			"status": run.Status,
		})
		return
	}

	filename := h.reportService.ReportFileName(run.Threshold, format)
	switch format {
	case services.ReportFormatCSV:
		c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
		c.Header("Content-Type", "text/csv")
		err = h.reportService.WriteCSV(c.Writer, report)
	case services.ReportFormatXLSX:
		c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.reportService.WriteXLSX(c.Writer, report)
	default:
		c.JSON(http.StatusOK, report)
	}
	if err != nil {
		logger.WithError(err).Errorf("Failed to write %s report for run %s", format, run.ID)
	}
}

// AcceptMatch records a reported match as an email merge
func (h *RunHandler) AcceptMatch(c *gin.Context) {
	merge, err := h.emailMergeService.AcceptMatch(c.Param("id"), c.Param("evidence_id"))
	if err != nil {
		h.respondError(c, err, "Match not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"merge": merge})
}

// ListMerges returns the accepted merges of a run
func (h *RunHandler) ListMerges(c *gin.Context) {
	runID := c.Param("id")
	if _, err := h.runService.GetRun(runID); err != nil {
		h.respondError(c, err, "Run not found")
		return
	}

	merges, err := h.emailMergeService.GetEmailMergesByRunID(runID)
	if err != nil {
		h.respondError(c, err, "Run not found")
		return
	}
	if merges == nil {
		merges = []*models.EmailMerge{}
	}

	c.JSON(http.StatusOK, gin.H{"merges": merges})
}

// DeleteMerge removes an accepted merge
func (h *RunHandler) DeleteMerge(c *gin.Context) {
	if err := h.emailMergeService.DeleteEmailMerge(c.Param("id")); err != nil {
		h.respondError(c, err, "Merge not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RunHandler) respondError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	if errors.Is(err, repositories.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
		return
	}
	logger.WithError(err).Errorf("Request %s %s failed", c.Request.Method, c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
