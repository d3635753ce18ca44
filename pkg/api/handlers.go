package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/ingest"
	"github.com/sentinelsoc/incident-engine/pkg/models"
	"github.com/sentinelsoc/incident-engine/pkg/services"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	incidentService *services.IncidentService
	ingestor        *ingest.Ingestor
	startTime       time.Time
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(incidentService *services.IncidentService, ingestor *ingest.Ingestor) *APIHandler {
	return &APIHandler{
		incidentService: incidentService,
		ingestor:        ingestor,
		startTime:       time.Now(),
	}
}

// httpStatusFor maps engine errors to HTTP status codes
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, models.ErrUnknownSeverity),
		errors.Is(err, models.ErrUnknownSource),
		errors.Is(err, models.ErrUnknownStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(httpStatusFor(err), map[string]string{"error": err.Error()})
}

// GetAlerts returns all alerts, optionally filtered by source
func (h *APIHandler) GetAlerts(c echo.Context) error {
	source := c.QueryParam("source")
	alerts, err := h.incidentService.ListAlerts(c.Request().Context(), source)
	if err != nil {
		logrus.Errorf("Error getting alerts: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, alerts)
}

// GetAlert returns an alert by ID
func (h *APIHandler) GetAlert(c echo.Context) error {
	id := c.Param("id")
	alert, err := h.incidentService.GetAlert(c.Request().Context(), id)
	if err != nil {
		logrus.Errorf("Error getting alert %s: %v", id, err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, alert)
}

// CreateAlert creates a new incident
func (h *APIHandler) CreateAlert(c echo.Context) error {
	var req models.CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		logrus.Errorf("Error binding create alert request: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Description is required"})
	}

	inc, err := h.incidentService.CreateAlert(c.Request().Context(), &req)
	if err != nil {
		logrus.Errorf("Error creating alert: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, inc)
}

// UpdateAlertState applies a status transition to an alert, or appends a
// note when the state is unchanged and a note is supplied
func (h *APIHandler) UpdateAlertState(c echo.Context) error {
	id := c.Param("id")
	var req models.UpdateStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	newStatus, err := models.ParseStatus(req.State)
	if err != nil {
		return errorJSON(c, err)
	}

	inc, err := h.incidentService.Transition(c.Request().Context(), id, newStatus, req.Actor, req.Note)
	if err != nil {
		logrus.Errorf("Error transitioning alert %s: %v", id, err)
		return errorJSON(c, err)
	}

	view, err := h.incidentService.GetAlert(c.Request().Context(), inc.ID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetAlertTimeline returns the event sequence of one incident
func (h *APIHandler) GetAlertTimeline(c echo.Context) error {
	id := c.Param("id")
	events, err := h.incidentService.IncidentTimeline(c.Request().Context(), id)
	if err != nil {
		logrus.Errorf("Error getting timeline for alert %s: %v", id, err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// GetTimeline returns the forensic timeline across all incidents,
// optionally bounded by an inclusive [start, end] range
func (h *APIHandler) GetTimeline(c echo.Context) error {
	startStr := c.QueryParam("start")
	endStr := c.QueryParam("end")

	var start, end *time.Time
	if startStr != "" {
		t, err := parseFlexibleTime(startStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid start time: %v", err)})
		}
		start = &t
	}
	if endStr != "" {
		t, err := parseFlexibleTime(endStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid end time: %v", err)})
		}
		end = &t
	}

	events, err := h.incidentService.Timeline(c.Request().Context(), start, end)
	if err != nil {
		logrus.Errorf("Error getting timeline: %v", err)
		return errorJSON(c, err)
	}

	entries := make([]models.TimelineEntryView, 0, len(events))
	for _, ev := range events {
		entries = append(entries, models.TimelineEntryView{
			IncidentID:  ev.IncidentID,
			Timestamp:   ev.Timestamp,
			Kind:        ev.Kind,
			Actor:       ev.Actor,
			Description: ev.Description,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

// GetMetrics returns the derived SOC metrics snapshot
func (h *APIHandler) GetMetrics(c echo.Context) error {
	snap, err := h.incidentService.Snapshot(c.Request().Context(), time.Now().UTC())
	if err != nil {
		logrus.Errorf("Error computing metrics: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// GetSystemHealth returns a process-wide status descriptor
func (h *APIHandler) GetSystemHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "Healthy",
		"os":           runtime.GOOS,
		"uptime_hours": time.Since(h.startTime).Hours(),
	})
}

// IngestLogs runs brute-force detection over submitted log lines
func (h *APIHandler) IngestLogs(c echo.Context) error {
	var req struct {
		Lines []string `json:"lines"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	incidents, err := h.ingestor.IngestLogLines(c.Request().Context(), req.Lines)
	if err != nil {
		logrus.Errorf("Error ingesting log lines: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, incidents)
}

// IngestSensor runs anomaly detection over submitted sensor readings
func (h *APIHandler) IngestSensor(c echo.Context) error {
	var req struct {
		Readings []ingest.SensorReading `json:"readings"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	incidents, err := h.ingestor.IngestSensorReadings(c.Request().Context(), req.Readings)
	if err != nil {
		logrus.Errorf("Error ingesting sensor readings: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, incidents)
}

// SetupRoutes sets up the API routes
func (h *APIHandler) SetupRoutes(e *echo.Echo) {
	// Alert endpoints
	e.GET("/api/alerts", h.GetAlerts)
	e.POST("/api/alerts", h.CreateAlert)
	e.GET("/api/alerts/:id", h.GetAlert)
	e.POST("/api/alerts/:id/state", h.UpdateAlertState)
	e.GET("/api/alerts/:id/timeline", h.GetAlertTimeline)
	e.GET("/api/alerts/:id/report/download", h.DownloadAlertReport)

	// Timeline and metrics endpoints
	e.GET("/api/timeline", h.GetTimeline)
	e.GET("/api/soc/metrics", h.GetMetrics)
	e.GET("/api/system_health", h.GetSystemHealth)

	// Export endpoints
	e.GET("/api/download/:format", h.DownloadExport)

	// Ingestion endpoints
	e.POST("/api/ingest/logs", h.IngestLogs)
	e.POST("/api/ingest/sensor", h.IngestSensor)
}
