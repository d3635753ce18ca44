package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/models"
	"github.com/sentinelsoc/incident-engine/pkg/sla"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

// Lifecycle errors reported to the caller
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidRange      = errors.New("invalid timeline range")
)

// IncidentService owns the incident lifecycle: creation, status
// transitions, note submissions and the derived views served to
// dashboards. All status mutations for a single incident are serialized
// through a per-incident lock.
type IncidentService struct {
	store  store.IncidentStore
	policy sla.Policy

	// Map of incident ID to its mutation lock
	incidentLocks     map[string]*sync.Mutex
	incidentLockMutex sync.Mutex
}

// NewIncidentService creates a new incident service
func NewIncidentService(st store.IncidentStore, policy sla.Policy) *IncidentService {
	return &IncidentService{
		store:         st,
		policy:        policy,
		incidentLocks: make(map[string]*sync.Mutex),
	}
}

// lockIncident returns the mutation lock for an incident id, creating it
// on first use. Locks are never removed: incidents are never deleted and
// the per-incident footprint is one mutex.
func (s *IncidentService) lockIncident(id string) *sync.Mutex {
	s.incidentLockMutex.Lock()
	defer s.incidentLockMutex.Unlock()

	if mu, ok := s.incidentLocks[id]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.incidentLocks[id] = mu
	return mu
}

// CreateAlert validates the enumerants, assigns a new id and persists the
// incident together with its CREATED timeline event atomically.
func (s *IncidentService) CreateAlert(ctx context.Context, req *models.CreateAlertRequest) (*models.Incident, error) {
	severity, err := models.ParseSeverity(req.Severity)
	if err != nil {
		return nil, err
	}
	source, err := models.ParseSource(req.Source)
	if err != nil {
		return nil, err
	}

	actor := req.Actor
	if actor == "" {
		actor = models.DefaultActor
	}

	now := time.Now().UTC()
	inc := &models.Incident{
		ID:          uuid.New().String(),
		Description: req.Description,
		Source:      source,
		Severity:    severity,
		Status:      models.StatusOpen,
		CreatedAt:   now,
	}

	created := models.TimelineEvent{
		ID:          uuid.New().String(),
		IncidentID:  inc.ID,
		Timestamp:   now,
		Kind:        models.EventCreated,
		Actor:       actor,
		Description: fmt.Sprintf("Incident created from %s source with severity %s", source, severity),
	}

	if err := s.store.CreateIncident(ctx, inc, created); err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	logrus.Infof("Created incident %s (severity=%s source=%s)", inc.ID, severity, source)
	return inc, nil
}

// Transition applies a status change to an incident, or appends a note
// when the requested state equals the current one and a note is present.
// The whole load-validate-mutate-append sequence runs under the
// incident's lock, so contended transitions have at most one winner.
func (s *IncidentService) Transition(ctx context.Context, id string, newStatus models.Status, actor, note string) (*models.Incident, error) {
	if actor == "" {
		actor = models.DefaultActor
	}

	mu := s.lockIncident(id)
	mu.Lock()
	defer mu.Unlock()

	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	// Note-only submission: same state plus a note is not a transition
	// at all. It bypasses the lifecycle table, so notes can be attached
	// to CLOSED incidents.
	if newStatus == inc.Status {
		if note == "" {
			return nil, fmt.Errorf("%w: incident %s is already %s", ErrInvalidTransition, id, inc.Status)
		}
		return s.appendNote(ctx, inc, actor, note)
	}

	if !inc.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inc.Status, newStatus)
	}

	now := time.Now().UTC()
	events := []models.TimelineEvent{{
		ID:          uuid.New().String(),
		IncidentID:  inc.ID,
		Timestamp:   now,
		Kind:        models.EventTransitioned,
		Actor:       actor,
		Description: fmt.Sprintf("%s -> %s", inc.Status, newStatus),
	}}
	if note != "" {
		events = append(events, models.TimelineEvent{
			ID:          uuid.New().String(),
			IncidentID:  inc.ID,
			Timestamp:   now,
			Kind:        models.EventNoteAdded,
			Actor:       actor,
			Description: note,
		})
	}

	var closedAt *time.Time
	if newStatus == models.StatusClosed {
		closedAt = &now
	}

	if err := s.store.UpdateIncidentStatus(ctx, inc.ID, newStatus, closedAt, events); err != nil {
		return nil, fmt.Errorf("failed to apply transition: %w", err)
	}

	logrus.Infof("Incident %s transitioned %s -> %s by %s", inc.ID, inc.Status, newStatus, actor)

	inc.Status = newStatus
	inc.ClosedAt = closedAt
	return inc, nil
}

// appendNote records a NOTE_ADDED event without touching incident state.
// Caller holds the incident lock.
func (s *IncidentService) appendNote(ctx context.Context, inc *models.Incident, actor, note string) (*models.Incident, error) {
	ev := models.TimelineEvent{
		ID:          uuid.New().String(),
		IncidentID:  inc.ID,
		Timestamp:   time.Now().UTC(),
		Kind:        models.EventNoteAdded,
		Actor:       actor,
		Description: note,
	}
	if err := s.store.AppendEvents(ctx, []models.TimelineEvent{ev}); err != nil {
		return nil, fmt.Errorf("failed to append note: %w", err)
	}

	logrus.Infof("Note added to incident %s by %s", inc.ID, actor)
	return inc, nil
}

// GetAlert returns one incident as a dashboard view with its SLA clock
// evaluated at now
func (s *IncidentService) GetAlert(ctx context.Context, id string) (*models.AlertView, error) {
	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(inc, time.Now().UTC())
	return &view, nil
}

// ListAlerts returns incident views, optionally filtered by source.
// Ordering (severity rank descending, then created_at ascending) is
// guaranteed by the store.
func (s *IncidentService) ListAlerts(ctx context.Context, sourceFilter string) ([]models.AlertView, error) {
	var source models.Source
	if sourceFilter != "" {
		parsed, err := models.ParseSource(sourceFilter)
		if err != nil {
			return nil, err
		}
		source = parsed
	}

	incidents, err := s.store.ListIncidents(ctx, source)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]models.AlertView, 0, len(incidents))
	for _, inc := range incidents {
		views = append(views, s.toView(inc, now))
	}
	return views, nil
}

// IncidentTimeline returns the event sequence of one incident, oldest
// first. An unknown id yields an empty sequence.
func (s *IncidentService) IncidentTimeline(ctx context.Context, id string) ([]models.TimelineEvent, error) {
	return s.store.EventsByIncident(ctx, id)
}

// Timeline returns events across all incidents. Both bounds must be
// supplied together; omitting both returns the full history. Bounds are
// inclusive, so start == end selects events at exactly that instant.
func (s *IncidentService) Timeline(ctx context.Context, start, end *time.Time) ([]models.TimelineEvent, error) {
	if (start == nil) != (end == nil) {
		return nil, fmt.Errorf("%w: start and end must be supplied together", ErrInvalidRange)
	}
	if start == nil {
		return s.store.AllEvents(ctx)
	}
	if start.After(*end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return s.store.EventsInRange(ctx, *start, *end)
}

// Policy exposes the SLA policy in effect
func (s *IncidentService) Policy() sla.Policy {
	return s.policy
}

func (s *IncidentService) toView(inc *models.Incident, now time.Time) models.AlertView {
	clock := s.policy.Evaluate(inc, now)
	return models.AlertView{
		ID:           inc.ID,
		Description:  inc.Description,
		Source:       inc.Source,
		Severity:     inc.Severity,
		Status:       inc.Status,
		CreatedAt:    inc.CreatedAt,
		ClosedAt:     inc.ClosedAt,
		SLADeadline:  clock.Deadline,
		SLARemaining: clock.Remaining.Seconds(),
		SLABreached:  clock.Breached,
	}
}
