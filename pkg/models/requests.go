package models

import "time"

// CreateAlertRequest is the payload for creating an incident by API
type CreateAlertRequest struct {
	Description string `json:"description"`
	Source      string `json:"source"`
	Severity    string `json:"severity"`
	Actor       string `json:"actor,omitempty"`
}

// UpdateStateRequest is the payload for a status transition or a
// note-only submission (state equal to the current status plus a note)
type UpdateStateRequest struct {
	State string `json:"state"`
	Actor string `json:"actor,omitempty"`
	Note  string `json:"note,omitempty"`
}

// AlertView is the incident representation served to polling dashboards,
// with the SLA clock evaluated at serving time
type AlertView struct {
	ID           string     `json:"id"`
	Description  string     `json:"description"`
	Source       Source     `json:"source"`
	Severity     Severity   `json:"severity"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	SLADeadline  time.Time  `json:"slaDeadline"`
	SLARemaining float64    `json:"slaRemainingSeconds"`
	SLABreached  bool       `json:"slaBreached"`
}

// TimelineEntryView is the flattened timeline representation served to
// the forensic reconstruction view
type TimelineEntryView struct {
	IncidentID  string    `json:"incidentId"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        EventKind `json:"kind"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
}

// MetricsSnapshot is the derived SOC metrics view, recomputed in full on
// every request
type MetricsSnapshot struct {
	Total             int       `json:"total"`
	OpenCount         int       `json:"openCount"`
	HighSeverityCount int       `json:"highSeverityCount"`
	SLABreachRatePct  float64   `json:"slaBreachRatePercent"`
	MTTRDays          float64   `json:"mttrDays"`
	ClosedCount       int       `json:"closedCount"`
	BreachedCount     int       `json:"breachedCount"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
