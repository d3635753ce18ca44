package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// SLAMonitor periodically sweeps the incident store and logs incidents
// whose SLA deadline has newly passed without resolution. It derives
// everything from store state on each sweep, so a restart loses nothing:
// an incident is reported as breached at most once per process lifetime.
type SLAMonitor struct {
	service  *IncidentService
	schedule string
	cron     *cron.Cron

	reportedMutex sync.Mutex
	reported      map[string]bool
}

// NewSLAMonitor creates a new SLA monitor. schedule is a cron expression,
// e.g. "@every 1m".
func NewSLAMonitor(service *IncidentService, schedule string) *SLAMonitor {
	return &SLAMonitor{
		service:  service,
		schedule: schedule,
		reported: make(map[string]bool),
	}
}

// Start schedules the sweep and runs one immediately
func (m *SLAMonitor) Start(ctx context.Context) error {
	logrus.Infof("Starting SLA monitor with schedule %q", m.schedule)

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, func() { m.Sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	m.cron = c

	m.Sweep(ctx)
	return nil
}

// Shutdown stops the scheduled sweeps, waiting for a running sweep to
// finish
func (m *SLAMonitor) Shutdown() {
	logrus.Info("Shutting down SLA monitor")
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

// Sweep evaluates every unresolved incident's SLA clock and logs newly
// breached ones. Returns the number of breaches reported this pass.
func (m *SLAMonitor) Sweep(ctx context.Context) int {
	incidents, err := m.service.store.ListIncidents(ctx, "")
	if err != nil {
		logrus.Errorf("SLA sweep failed to list incidents: %v", err)
		return 0
	}

	now := time.Now().UTC()
	newlyBreached := 0

	m.reportedMutex.Lock()
	defer m.reportedMutex.Unlock()

	for _, inc := range incidents {
		if inc.Status == models.StatusClosed {
			continue
		}
		clock := m.service.policy.Evaluate(inc, now)
		if !clock.Breached || m.reported[inc.ID] {
			continue
		}
		m.reported[inc.ID] = true
		newlyBreached++
		logrus.Warnf("SLA breached for incident %s (severity=%s, overdue by %s)",
			inc.ID, inc.Severity, (-clock.Remaining).Round(time.Second))
	}

	if newlyBreached > 0 {
		logrus.Infof("SLA sweep reported %d newly breached incidents", newlyBreached)
	}
	return newlyBreached
}
