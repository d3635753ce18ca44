package sla

import (
	"time"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// Policy maps incident severity to the allowed resolution duration.
// Higher severities get shorter windows.
type Policy struct {
	High   time.Duration
	Medium time.Duration
	Low    time.Duration
}

// DefaultPolicy returns the standard SOC resolution windows:
// 15 minutes for HIGH, 60 for MEDIUM, 240 for LOW.
func DefaultPolicy() Policy {
	return Policy{
		High:   15 * time.Minute,
		Medium: 60 * time.Minute,
		Low:    240 * time.Minute,
	}
}

// Duration returns the allowed resolution duration for a severity.
// Unknown severities are rejected at incident creation, so any severity
// reaching here is one of the three known values.
func (p Policy) Duration(sev models.Severity) time.Duration {
	switch sev {
	case models.SeverityHigh:
		return p.High
	case models.SeverityMedium:
		return p.Medium
	default:
		return p.Low
	}
}

// Clock is the evaluated SLA state of a single incident
type Clock struct {
	Deadline  time.Time
	Remaining time.Duration
	Breached  bool
}

// Evaluate computes the SLA clock for an incident at the given instant.
// For CLOSED incidents the clock is frozen at the resolution time, so a
// closed incident's breach state never changes afterwards. Pure function.
func (p Policy) Evaluate(inc *models.Incident, now time.Time) Clock {
	deadline := inc.CreatedAt.Add(p.Duration(inc.Severity))

	ref := now
	if inc.Status == models.StatusClosed && inc.ClosedAt != nil {
		ref = *inc.ClosedAt
	}

	remaining := deadline.Sub(ref)
	return Clock{
		Deadline:  deadline,
		Remaining: remaining,
		Breached:  remaining < 0,
	}
}
