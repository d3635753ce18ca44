package store

import (
	"context"
	"time"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// IncidentStore is the persistence contract consumed by the service
// layer. Declared as an interface so tests can substitute a mock.
type IncidentStore interface {
	CreateIncident(ctx context.Context, inc *models.Incident, created models.TimelineEvent) error
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListIncidents(ctx context.Context, source models.Source) ([]*models.Incident, error)
	UpdateIncidentStatus(ctx context.Context, id string, status models.Status, closedAt *time.Time, events []models.TimelineEvent) error
	AppendEvents(ctx context.Context, events []models.TimelineEvent) error
	EventsByIncident(ctx context.Context, incidentID string) ([]models.TimelineEvent, error)
	EventsInRange(ctx context.Context, start, end time.Time) ([]models.TimelineEvent, error)
	AllEvents(ctx context.Context) ([]models.TimelineEvent, error)
}

// Ensure Store implements IncidentStore
var _ IncidentStore = (*Store)(nil)
