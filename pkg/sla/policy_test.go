package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

func TestDefaultPolicyDurations(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 15*time.Minute, p.Duration(models.SeverityHigh))
	assert.Equal(t, 60*time.Minute, p.Duration(models.SeverityMedium))
	assert.Equal(t, 240*time.Minute, p.Duration(models.SeverityLow))

	// Higher severities always get shorter windows
	assert.Less(t, p.Duration(models.SeverityHigh), p.Duration(models.SeverityMedium))
	assert.Less(t, p.Duration(models.SeverityMedium), p.Duration(models.SeverityLow))
}

func TestEvaluateOpenIncident(t *testing.T) {
	p := DefaultPolicy()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	inc := &models.Incident{
		Severity:  models.SeverityHigh,
		Status:    models.StatusOpen,
		CreatedAt: created,
	}

	clock := p.Evaluate(inc, created.Add(5*time.Minute))
	assert.Equal(t, created.Add(15*time.Minute), clock.Deadline)
	assert.Equal(t, 10*time.Minute, clock.Remaining)
	assert.False(t, clock.Breached)

	clock = p.Evaluate(inc, created.Add(20*time.Minute))
	assert.Equal(t, -5*time.Minute, clock.Remaining)
	assert.True(t, clock.Breached)
}

func TestEvaluateExactDeadlineIsNotBreached(t *testing.T) {
	p := DefaultPolicy()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	inc := &models.Incident{
		Severity:  models.SeverityMedium,
		Status:    models.StatusOpen,
		CreatedAt: created,
	}

	clock := p.Evaluate(inc, created.Add(60*time.Minute))
	assert.Equal(t, time.Duration(0), clock.Remaining)
	assert.False(t, clock.Breached)
}

func TestEvaluateFrozenAtResolution(t *testing.T) {
	p := DefaultPolicy()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	closed := created.Add(10 * time.Minute)
	inc := &models.Incident{
		Severity:  models.SeverityHigh,
		Status:    models.StatusClosed,
		CreatedAt: created,
		ClosedAt:  &closed,
	}

	// Closed within the window; evaluating long after close must not
	// flip the incident to breached.
	clock := p.Evaluate(inc, created.Add(48*time.Hour))
	assert.Equal(t, 5*time.Minute, clock.Remaining)
	assert.False(t, clock.Breached)
}

func TestEvaluateClosedLateStaysBreached(t *testing.T) {
	p := DefaultPolicy()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	closed := created.Add(30 * time.Minute)
	inc := &models.Incident{
		Severity:  models.SeverityHigh,
		Status:    models.StatusClosed,
		CreatedAt: created,
		ClosedAt:  &closed,
	}

	clock := p.Evaluate(inc, created.Add(time.Minute))
	assert.True(t, clock.Breached)
	assert.Equal(t, -15*time.Minute, clock.Remaining)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	p := DefaultPolicy()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(7 * time.Minute)
	inc := &models.Incident{
		Severity:  models.SeverityLow,
		Status:    models.StatusOpen,
		CreatedAt: created,
	}

	first := p.Evaluate(inc, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Evaluate(inc, now))
	}
}
