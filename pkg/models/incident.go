package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors for enumerants supplied at creation time
var (
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrUnknownSource   = errors.New("unknown source")
	ErrUnknownStatus   = errors.New("unknown status")
)

// Severity represents the triage severity of an incident
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Rank returns the sort weight of a severity (HIGH > MEDIUM > LOW)
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity validates and normalizes a severity string
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(s)) {
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityLow:
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// Source represents the categorical origin of an incident
type Source string

const (
	SourceLog    Source = "LOG"
	SourceEmail  Source = "EMAIL"
	SourceSensor Source = "SENSOR"
)

// ParseSource validates and normalizes a source string
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToUpper(s)) {
	case SourceLog:
		return SourceLog, nil
	case SourceEmail:
		return SourceEmail, nil
	case SourceSensor:
		return SourceSensor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// Status represents the lifecycle state of an incident
type Status string

const (
	StatusOpen         Status = "OPEN"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusClosed       Status = "CLOSED"
)

// transitions is the explicit lifecycle table. CLOSED is terminal and an
// incident must pass through ACKNOWLEDGED before it can be closed.
var transitions = map[Status][]Status{
	StatusOpen:         {StatusAcknowledged},
	StatusAcknowledged: {StatusClosed},
	StatusClosed:       {},
}

// CanTransitionTo reports whether the lifecycle table permits s -> next.
// Same-state is never a valid transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus validates and normalizes a status string
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(s)) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusAcknowledged:
		return StatusAcknowledged, nil
	case StatusClosed:
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Incident is the authoritative record of a tracked security event.
// Only Status and ClosedAt are mutable, and only via the state machine.
type Incident struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Source      Source     `json:"source"`
	Severity    Severity   `json:"severity"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
}
