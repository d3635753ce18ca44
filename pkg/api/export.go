package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// DownloadAlertReport serves a JSON forensic report for one incident:
// the incident view plus its full timeline
func (h *APIHandler) DownloadAlertReport(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	alert, err := h.incidentService.GetAlert(ctx, id)
	if err != nil {
		logrus.Errorf("Error building report for alert %s: %v", id, err)
		return errorJSON(c, err)
	}
	events, err := h.incidentService.IncidentTimeline(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="incident_%s_report.json"`, id))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"generatedAt": time.Now().UTC(),
		"incident":    alert,
		"timeline":    events,
	})
}

// DownloadExport serves the full incident store, plus timeline, in the
// requested format (json or csv). The export reflects exactly what the
// store holds at export time.
func (h *APIHandler) DownloadExport(c echo.Context) error {
	format := c.Param("format")
	ctx := c.Request().Context()

	alerts, err := h.incidentService.ListAlerts(ctx, "")
	if err != nil {
		logrus.Errorf("Error exporting alerts: %v", err)
		return errorJSON(c, err)
	}

	switch format {
	case "json":
		events, err := h.incidentService.Timeline(ctx, nil, nil)
		if err != nil {
			return errorJSON(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="soc_export.json"`)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"generatedAt": time.Now().UTC(),
			"alerts":      alerts,
			"timeline":    events,
		})
	case "csv":
		buf, err := alertsCSV(alerts)
		if err != nil {
			logrus.Errorf("Error building CSV export: %v", err)
			return errorJSON(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="soc_export.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Unsupported export format %q", format)})
	}
}

func alertsCSV(alerts []models.AlertView) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"id", "description", "source", "severity", "status", "created_at", "closed_at", "sla_deadline", "sla_breached"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, a := range alerts {
		closedAt := ""
		if a.ClosedAt != nil {
			closedAt = a.ClosedAt.Format(time.RFC3339)
		}
		record := []string{
			a.ID,
			a.Description,
			string(a.Source),
			string(a.Severity),
			string(a.Status),
			a.CreatedAt.Format(time.RFC3339),
			closedAt,
			a.SLADeadline.Format(time.RFC3339),
			strconv.FormatBool(a.SLABreached),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf, w.Error()
}
