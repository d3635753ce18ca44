package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sentinelsoc/incident-engine/pkg/api"
	"github.com/sentinelsoc/incident-engine/pkg/config"
	"github.com/sentinelsoc/incident-engine/pkg/ingest"
	"github.com/sentinelsoc/incident-engine/pkg/services"
	"github.com/sentinelsoc/incident-engine/pkg/sla"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

// @title SOC Incident Lifecycle Engine API
// @version 1.0
// @description Incident lifecycle, forensic timeline and SLA metrics engine for SOC dashboards
// @BasePath /api

func main() {
	// Configure Log Level from Environment Variable
	logLevelStr := os.Getenv("LOG_LEVEL")
	switch strings.ToLower(logLevelStr) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "fatal":
		logrus.SetLevel(logrus.FatalLevel)
	case "panic":
		logrus.SetLevel(logrus.PanicLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.Infof("Log level set to: %s", logrus.GetLevel().String())

	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Open the incident store
	incidentStore, err := store.Open(cfg.Database.Path)
	if err != nil {
		logrus.Fatalf("Failed to open incident store: %v", err)
	}
	defer incidentStore.Close()

	// Build the SLA policy from configuration
	high, medium, low := cfg.SLA.Durations()
	policy := sla.Policy{High: high, Medium: medium, Low: low}

	// Initialize services
	incidentService := services.NewIncidentService(incidentStore, policy)
	ingestor := ingest.NewIngestor(incidentService, ingest.Thresholds{
		BruteForceAttempts: cfg.Ingest.BruteForceAttempts,
		TemperatureMax:     cfg.Ingest.TemperatureMax,
		TemperatureMin:     cfg.Ingest.TemperatureMin,
		VibrationMax:       cfg.Ingest.VibrationMax,
	})

	// Start the SLA breach monitor
	ctx := context.Background()
	var slaMonitor *services.SLAMonitor
	if cfg.Monitor.Enabled {
		slaMonitor = services.NewSLAMonitor(incidentService, cfg.Monitor.Schedule)
		if err := slaMonitor.Start(ctx); err != nil {
			logrus.Fatalf("Failed to start SLA monitor: %v", err)
		}
		logrus.Info("SLA monitoring service started")
	}

	// Set up the Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// API routes
	apiHandler := api.NewAPIHandler(incidentService, ingestor)
	apiHandler.SetupRoutes(e)

	// Swagger documentation
	e.GET("/swagger/*", echo.WrapHandler(httpSwagger.Handler()))

	// Static files for UI
	e.Static("/", "./ui/build")

	// Create HTTP server
	// Use PORT environment variable if available, otherwise use config
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logrus.Infof("Starting server on port %s", port)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Shutdown the SLA monitor
	if slaMonitor != nil {
		slaMonitor.Shutdown()
		logrus.Info("SLA monitor shutdown complete")
	}

	// Create a deadline for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Shutdown the server
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}
