package ingest

import (
	"fmt"
	"regexp"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// Draft is a detector finding ready to be created as an incident
type Draft struct {
	Description string
	Source      models.Source
	Severity    models.Severity
}

// Thresholds configure the detection rules
type Thresholds struct {
	BruteForceAttempts int
	TemperatureMax     float64
	TemperatureMin     float64
	VibrationMax       float64
}

// DefaultThresholds returns the standard detection thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		BruteForceAttempts: 3,
		TemperatureMax:     70,
		TemperatureMin:     0,
		VibrationMax:       5,
	}
}

var failedPasswordRe = regexp.MustCompile(`Failed password.*from (\d+\.\d+\.\d+\.\d+)`)

// DetectBruteForce scans auth log lines for repeated failed logins and
// produces one HIGH draft per offending source IP once the attempt count
// reaches the threshold.
func DetectBruteForce(lines []string, t Thresholds) []Draft {
	failedLogins := make(map[string]int)
	var drafts []Draft

	for _, line := range lines {
		match := failedPasswordRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		ip := match[1]
		failedLogins[ip]++
		if failedLogins[ip] == t.BruteForceAttempts {
			drafts = append(drafts, Draft{
				Description: fmt.Sprintf("Brute-force detected from %s: %d failed attempts", ip, failedLogins[ip]),
				Source:      models.SourceLog,
				Severity:    models.SeverityHigh,
			})
		}
	}
	return drafts
}

// SensorReading is one sample from the sensor feed
type SensorReading struct {
	Timestamp string  `json:"timestamp"`
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
}

// Sensor reading types
const (
	ReadingTemperature = "temperature"
	ReadingMotion      = "motion"
	ReadingVibration   = "vibration"
)

// DetectSensorAnomalies evaluates sensor readings against the
// thresholds: out-of-range temperature is HIGH, excessive vibration is
// MEDIUM, motion is LOW.
func DetectSensorAnomalies(readings []SensorReading, t Thresholds) []Draft {
	var drafts []Draft
	for _, r := range readings {
		switch r.Type {
		case ReadingTemperature:
			if r.Value > t.TemperatureMax || r.Value < t.TemperatureMin {
				drafts = append(drafts, Draft{
					Description: fmt.Sprintf("Abnormal temperature %.2f detected at %s", r.Value, r.Timestamp),
					Source:      models.SourceSensor,
					Severity:    models.SeverityHigh,
				})
			}
		case ReadingMotion:
			if r.Value >= 1 {
				drafts = append(drafts, Draft{
					Description: fmt.Sprintf("Motion detected at %s", r.Timestamp),
					Source:      models.SourceSensor,
					Severity:    models.SeverityLow,
				})
			}
		case ReadingVibration:
			if r.Value > t.VibrationMax {
				drafts = append(drafts, Draft{
					Description: fmt.Sprintf("Excessive vibration (%.2f) detected at %s", r.Value, r.Timestamp),
					Source:      models.SourceSensor,
					Severity:    models.SeverityMedium,
				})
			}
		}
	}
	return drafts
}
