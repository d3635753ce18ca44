package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/config"
	"github.com/sentinelsoc/incident-engine/pkg/models"
	"github.com/sentinelsoc/incident-engine/pkg/services"
	"github.com/sentinelsoc/incident-engine/pkg/sla"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

// Seeds the incident store with demo data covering every source,
// severity and lifecycle state, so the dashboards have something to show.
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	incidentStore, err := store.Open(cfg.Database.Path)
	if err != nil {
		logrus.Fatalf("Failed to open incident store: %v", err)
	}
	defer incidentStore.Close()

	high, medium, low := cfg.SLA.Durations()
	service := services.NewIncidentService(incidentStore, sla.Policy{High: high, Medium: medium, Low: low})

	ctx := context.Background()
	seeds := []models.CreateAlertRequest{
		{Description: "Brute-force detected from 192.168.1.45: 7 failed attempts", Source: "LOG", Severity: "HIGH"},
		{Description: "Phishing campaign targeting finance team", Source: "EMAIL", Severity: "HIGH"},
		{Description: "Suspicious attachment quarantined", Source: "EMAIL", Severity: "MEDIUM"},
		{Description: "Abnormal temperature 82.50 detected in server room", Source: "SENSOR", Severity: "HIGH"},
		{Description: "Motion detected in restricted area after hours", Source: "SENSOR", Severity: "LOW"},
		{Description: "Repeated sudo failures on bastion host", Source: "LOG", Severity: "MEDIUM"},
	}

	for i, req := range seeds {
		req.Actor = "seeder"
		inc, err := service.CreateAlert(ctx, &req)
		if err != nil {
			logrus.Fatalf("Failed to seed incident: %v", err)
		}
		logrus.Infof("Seeded incident %s [%s/%s]", inc.ID, inc.Severity, inc.Source)

		// Walk a couple of incidents through the lifecycle for variety
		if i%3 == 1 {
			if _, err := service.Transition(ctx, inc.ID, models.StatusAcknowledged, "seeder", "Taking a look"); err != nil {
				logrus.Fatalf("Failed to acknowledge seeded incident: %v", err)
			}
		}
		if i%3 == 2 {
			if _, err := service.Transition(ctx, inc.ID, models.StatusAcknowledged, "seeder", ""); err != nil {
				logrus.Fatalf("Failed to acknowledge seeded incident: %v", err)
			}
			if _, err := service.Transition(ctx, inc.ID, models.StatusClosed, "seeder", "False positive"); err != nil {
				logrus.Fatalf("Failed to close seeded incident: %v", err)
			}
		}
	}

	logrus.Infof("Seeded %d incidents into %s", len(seeds), cfg.Database.Path)
}
