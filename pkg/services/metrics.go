package services

import (
	"context"
	"time"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// Snapshot recomputes the SOC metrics from the full incident store at
// the given instant. Nothing is cached or incrementally maintained: a
// full fold on every call keeps the numbers consistent with whatever the
// concurrent writers have committed.
func (s *IncidentService) Snapshot(ctx context.Context, now time.Time) (*models.MetricsSnapshot, error) {
	incidents, err := s.store.ListIncidents(ctx, "")
	if err != nil {
		return nil, err
	}

	snap := &models.MetricsSnapshot{GeneratedAt: now}
	var resolutionTotal time.Duration

	for _, inc := range incidents {
		snap.Total++
		if inc.Status == models.StatusOpen {
			snap.OpenCount++
		}
		if inc.Severity == models.SeverityHigh {
			snap.HighSeverityCount++
		}
		if s.policy.Evaluate(inc, now).Breached {
			snap.BreachedCount++
		}
		if inc.Status == models.StatusClosed && inc.ClosedAt != nil {
			snap.ClosedCount++
			resolutionTotal += inc.ClosedAt.Sub(inc.CreatedAt)
		}
	}

	if snap.Total > 0 {
		snap.SLABreachRatePct = 100 * float64(snap.BreachedCount) / float64(snap.Total)
	}
	if snap.ClosedCount > 0 {
		mean := resolutionTotal / time.Duration(snap.ClosedCount)
		snap.MTTRDays = mean.Hours() / 24
	}

	return snap, nil
}
