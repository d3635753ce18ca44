package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "soc_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newIncident(severity models.Severity, source models.Source, createdAt time.Time) (*models.Incident, models.TimelineEvent) {
	inc := &models.Incident{
		ID:          uuid.New().String(),
		Description: "test incident",
		Source:      source,
		Severity:    severity,
		Status:      models.StatusOpen,
		CreatedAt:   createdAt,
	}
	created := models.TimelineEvent{
		ID:          uuid.New().String(),
		IncidentID:  inc.ID,
		Timestamp:   createdAt,
		Kind:        models.EventCreated,
		Actor:       models.DefaultActor,
		Description: "Incident created",
	}
	return inc, created
}

func TestCreateAndGetIncident(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	inc, created := newIncident(models.SeverityHigh, models.SourceLog, createdAt)
	require.NoError(t, s.CreateIncident(ctx, inc, created))

	got, err := s.GetIncident(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, inc.ID, got.ID)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, models.SeverityHigh, got.Severity)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.Nil(t, got.ClosedAt)

	// Creation also committed the CREATED event
	events, err := s.EventsByIncident(ctx, inc.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCreated, events[0].Kind)
}

func TestGetIncidentNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetIncident(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIncidentsOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// Insert out of order: LOW first, then two HIGH with distinct
	// creation times (newer HIGH inserted before older HIGH), then MEDIUM.
	low, lowEv := newIncident(models.SeverityLow, models.SourceLog, base)
	require.NoError(t, s.CreateIncident(ctx, low, lowEv))
	highNew, highNewEv := newIncident(models.SeverityHigh, models.SourceEmail, base.Add(2*time.Hour))
	require.NoError(t, s.CreateIncident(ctx, highNew, highNewEv))
	highOld, highOldEv := newIncident(models.SeverityHigh, models.SourceLog, base.Add(time.Hour))
	require.NoError(t, s.CreateIncident(ctx, highOld, highOldEv))
	medium, mediumEv := newIncident(models.SeverityMedium, models.SourceSensor, base)
	require.NoError(t, s.CreateIncident(ctx, medium, mediumEv))

	incidents, err := s.ListIncidents(ctx, "")
	require.NoError(t, err)
	require.Len(t, incidents, 4)

	// Severity rank descending, created_at ascending within a rank
	assert.Equal(t, highOld.ID, incidents[0].ID)
	assert.Equal(t, highNew.ID, incidents[1].ID)
	assert.Equal(t, medium.ID, incidents[2].ID)
	assert.Equal(t, low.ID, incidents[3].ID)
}

func TestListIncidentsSourceFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	logInc, logEv := newIncident(models.SeverityLow, models.SourceLog, base)
	require.NoError(t, s.CreateIncident(ctx, logInc, logEv))
	emailInc, emailEv := newIncident(models.SeverityLow, models.SourceEmail, base)
	require.NoError(t, s.CreateIncident(ctx, emailInc, emailEv))

	incidents, err := s.ListIncidents(ctx, models.SourceEmail)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, emailInc.ID, incidents[0].ID)
}

func TestUpdateIncidentStatusAtomicWithEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	inc, created := newIncident(models.SeverityMedium, models.SourceLog, base)
	require.NoError(t, s.CreateIncident(ctx, inc, created))

	closedAt := base.Add(30 * time.Minute)
	events := []models.TimelineEvent{
		{
			ID:          uuid.New().String(),
			IncidentID:  inc.ID,
			Timestamp:   closedAt,
			Kind:        models.EventTransitioned,
			Actor:       "alice",
			Description: "ACKNOWLEDGED -> CLOSED",
		},
		{
			ID:          uuid.New().String(),
			IncidentID:  inc.ID,
			Timestamp:   closedAt,
			Kind:        models.EventNoteAdded,
			Actor:       "alice",
			Description: "Root cause identified",
		},
	}
	require.NoError(t, s.UpdateIncidentStatus(ctx, inc.ID, models.StatusClosed, &closedAt, events))

	got, err := s.GetIncident(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.Equal(closedAt))

	all, err := s.EventsByIncident(ctx, inc.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Insertion order preserved for same-timestamp events
	assert.Equal(t, models.EventTransitioned, all[1].Kind)
	assert.Equal(t, models.EventNoteAdded, all[2].Kind)
}

func TestUpdateIncidentStatusNotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.UpdateIncidentStatus(context.Background(), "missing", models.StatusAcknowledged, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventsByIncidentUnknownIDIsEmpty(t *testing.T) {
	s := openTestStore(t)

	events, err := s.EventsByIncident(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventsInRangeInclusiveBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	inc, created := newIncident(models.SeverityLow, models.SourceSensor, base)
	require.NoError(t, s.CreateIncident(ctx, inc, created))

	for i, offset := range []time.Duration{time.Hour, 2 * time.Hour, 3 * time.Hour} {
		ev := models.TimelineEvent{
			ID:          uuid.New().String(),
			IncidentID:  inc.ID,
			Timestamp:   base.Add(offset),
			Kind:        models.EventNoteAdded,
			Actor:       "bob",
			Description: "note",
		}
		require.NoError(t, s.AppendEvents(ctx, []models.TimelineEvent{ev}), "event %d", i)
	}

	// Inclusive on both ends
	events, err := s.EventsInRange(ctx, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, events, 2)

	// start == end selects events at exactly that instant
	events, err = s.EventsInRange(ctx, base.Add(2*time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp.Equal(base.Add(2*time.Hour)))

	// Empty window before any event
	events, err = s.EventsInRange(ctx, base.Add(-2*time.Hour), base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTimelineAppendOnlyGrowth(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	inc, created := newIncident(models.SeverityLow, models.SourceLog, base)
	require.NoError(t, s.CreateIncident(ctx, inc, created))

	before, err := s.EventsByIncident(ctx, inc.ID)
	require.NoError(t, err)

	ev := models.TimelineEvent{
		ID:          uuid.New().String(),
		IncidentID:  inc.ID,
		Timestamp:   base.Add(time.Minute),
		Kind:        models.EventNoteAdded,
		Actor:       "carol",
		Description: "investigating",
	}
	require.NoError(t, s.AppendEvents(ctx, []models.TimelineEvent{ev}))

	after, err := s.EventsByIncident(ctx, inc.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	// Existing entries are unchanged, in the same positions
	for i, old := range before {
		assert.Equal(t, old.ID, after[i].ID)
		assert.Equal(t, old.Description, after[i].Description)
		assert.True(t, old.Timestamp.Equal(after[i].Timestamp))
	}
}

func TestAllEventsAscending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, firstEv := newIncident(models.SeverityHigh, models.SourceLog, base.Add(time.Hour))
	require.NoError(t, s.CreateIncident(ctx, first, firstEv))
	second, secondEv := newIncident(models.SeverityLow, models.SourceEmail, base)
	require.NoError(t, s.CreateIncident(ctx, second, secondEv))

	events, err := s.AllEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
	assert.Equal(t, second.ID, events[0].IncidentID)
}
