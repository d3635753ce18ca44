package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsoc/incident-engine/pkg/models"
	"github.com/sentinelsoc/incident-engine/pkg/services"
	"github.com/sentinelsoc/incident-engine/pkg/sla"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

func newTestIngestor(t *testing.T) (*Ingestor, *services.IncidentService) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "soc_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	svc := services.NewIncidentService(s, sla.DefaultPolicy())
	return NewIngestor(svc, DefaultThresholds()), svc
}

func TestIngestLogLinesCreatesIncidents(t *testing.T) {
	ing, svc := newTestIngestor(t)
	ctx := context.Background()

	lines := []string{
		failedLogin("10.0.0.5"),
		failedLogin("10.0.0.5"),
		failedLogin("10.0.0.5"),
	}
	created, err := ing.IngestLogLines(ctx, lines)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, models.StatusOpen, created[0].Status)
	assert.Equal(t, models.SeverityHigh, created[0].Severity)
	assert.Equal(t, models.SourceLog, created[0].Source)

	// Ingested incidents carry a CREATED timeline event like any other
	events, err := svc.IncidentTimeline(ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCreated, events[0].Kind)
	assert.Equal(t, models.DefaultActor, events[0].Actor)
}

func TestIngestLogLinesNoFindings(t *testing.T) {
	ing, _ := newTestIngestor(t)

	created, err := ing.IngestLogLines(context.Background(), []string{"nothing to see here"})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestIngestSensorReadingsCreatesIncidents(t *testing.T) {
	ing, svc := newTestIngestor(t)
	ctx := context.Background()

	readings := []SensorReading{
		{Timestamp: "2026-01-10T03:00:00Z", Type: ReadingTemperature, Value: 85},
		{Timestamp: "2026-01-10T03:01:00Z", Type: ReadingVibration, Value: 7.2},
		{Timestamp: "2026-01-10T03:02:00Z", Type: ReadingMotion, Value: 0},
	}
	created, err := ing.IngestSensorReadings(ctx, readings)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, models.SeverityHigh, created[0].Severity)
	assert.Equal(t, models.SeverityMedium, created[1].Severity)

	views, err := svc.ListAlerts(ctx, "SENSOR")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
