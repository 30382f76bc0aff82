package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/devmatch/internal/handlers"
	"github.com/alimgiray/devmatch/internal/middleware"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/internal/workers"
	"github.com/alimgiray/devmatch/pkg/config"
	"github.com/alimgiray/devmatch/pkg/database"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init()

	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	runRepo := repositories.NewMatchRunRepository(database.DB)
	evidenceRepo := repositories.NewMatchEvidenceRepository(database.DB)
	jobRepo := repositories.NewJobRepository(database.DB)
	emailMergeRepo := repositories.NewEmailMergeRepository(database.DB)

	matchService := services.NewMatchService(
		services.NewNormalizerService(),
		services.NewTextSimilarityService(),
		services.NewCommonPrefixSet(cfg.Match.CommonPrefixes...),
		cfg.Match.Workers,
	)
	jobService := services.NewJobService(jobRepo)
	runService := services.NewMatchRunService(runRepo, evidenceRepo, jobService, matchService)
	emailMergeService := services.NewEmailMergeService(emailMergeRepo, evidenceRepo)
	reportService := services.NewReportService()

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(jobRepo, runService, cfg.Match.JobWorkers)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Setup routes
	setupRoutes(router, cfg, runService, emailMergeService, reportService)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, cfg *config.Config, runService *services.MatchRunService,
	emailMergeService *services.EmailMergeService, reportService *services.ReportService) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(database.DB)
	runHandler := handlers.NewRunHandler(runService, emailMergeService, reportService, cfg.Match.Threshold)
	notFoundHandler := handlers.NewNotFoundHandler()

	// Health check endpoint
	router.GET("/health", healthHandler.Health)

	// Protected routes
	api := router.Group("/")
	api.Use(middleware.TokenRequired(cfg.Server.APIToken))
	{
		api.POST("/runs", runHandler.CreateRun)
		api.GET("/runs", runHandler.ListRuns)
		api.GET("/runs/:id", runHandler.GetRun)
		api.DELETE("/runs/:id", runHandler.DeleteRun)
		api.GET("/runs/:id/matches", runHandler.GetMatches)
		api.POST("/runs/:id/matches/:evidence_id/accept", runHandler.AcceptMatch)
		api.GET("/runs/:id/merges", runHandler.ListMerges)
		api.DELETE("/merges/:id", runHandler.DeleteMerge)
	}

	router.NoRoute(notFoundHandler.NotFound)
}
