package ingest

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/models"
	"github.com/sentinelsoc/incident-engine/pkg/services"
)

// Ingestor turns detector findings into tracked incidents. All creation
// goes through the incident service, never raw store writes, so every
// ingested finding gets its CREATED timeline event.
type Ingestor struct {
	service    *services.IncidentService
	thresholds Thresholds
}

// NewIngestor creates a new ingestor
func NewIngestor(service *services.IncidentService, thresholds Thresholds) *Ingestor {
	return &Ingestor{service: service, thresholds: thresholds}
}

// IngestLogLines runs brute-force detection over raw log lines and
// creates an incident per finding
func (i *Ingestor) IngestLogLines(ctx context.Context, lines []string) ([]*models.Incident, error) {
	return i.createAll(ctx, DetectBruteForce(lines, i.thresholds))
}

// IngestSensorReadings runs anomaly detection over sensor samples and
// creates an incident per finding
func (i *Ingestor) IngestSensorReadings(ctx context.Context, readings []SensorReading) ([]*models.Incident, error) {
	return i.createAll(ctx, DetectSensorAnomalies(readings, i.thresholds))
}

func (i *Ingestor) createAll(ctx context.Context, drafts []Draft) ([]*models.Incident, error) {
	incidents := make([]*models.Incident, 0, len(drafts))
	for _, d := range drafts {
		inc, err := i.service.CreateAlert(ctx, &models.CreateAlertRequest{
			Description: d.Description,
			Source:      string(d.Source),
			Severity:    string(d.Severity),
		})
		if err != nil {
			return incidents, err
		}
		incidents = append(incidents, inc)
	}
	if len(incidents) > 0 {
		logrus.Infof("Ingestion created %d incidents", len(incidents))
	}
	return incidents, nil
}
