package models

import "time"

// EventKind classifies a forensic timeline entry
type EventKind string

const (
	EventCreated      EventKind = "CREATED"
	EventTransitioned EventKind = "TRANSITIONED"
	EventNoteAdded    EventKind = "NOTE_ADDED"
)

// DefaultActor is recorded when a caller supplies no analyst label
const DefaultActor = "system"

// TimelineEvent is one append-only audit record correlated to an incident.
// Events are immutable once written and never reordered or deleted.
type TimelineEvent struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incidentId"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        EventKind `json:"kind"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
}
