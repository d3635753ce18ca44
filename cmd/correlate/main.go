package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sentinelsoc/incident-engine/pkg/config"
	"github.com/sentinelsoc/incident-engine/pkg/ingest"
	"github.com/sentinelsoc/incident-engine/pkg/services"
	"github.com/sentinelsoc/incident-engine/pkg/sla"
	"github.com/sentinelsoc/incident-engine/pkg/store"
)

// Scans a directory of auth logs plus an optional sensor data file and
// ingests the findings as incidents. CSV sensor lines are
// "timestamp,type,value".
func main() {
	configPath := flag.String("config", "", "path to config file")
	logDir := flag.String("logs", "logs", "directory of .log files to scan")
	sensorFile := flag.String("sensor", "", "sensor data file (timestamp,type,value per line)")
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
	ingestor := ingest.NewIngestor(service, ingest.Thresholds{
		BruteForceAttempts: cfg.Ingest.BruteForceAttempts,
		TemperatureMax:     cfg.Ingest.TemperatureMax,
		TemperatureMin:     cfg.Ingest.TemperatureMin,
		VibrationMax:       cfg.Ingest.VibrationMax,
	})

	ctx := context.Background()
	created := 0

	lines, err := readLogLines(*logDir)
	if err != nil {
		logrus.Fatalf("Failed to read logs from %s: %v", *logDir, err)
	}
	if len(lines) > 0 {
		incidents, err := ingestor.IngestLogLines(ctx, lines)
		if err != nil {
			logrus.Fatalf("Failed to ingest log lines: %v", err)
		}
		created += len(incidents)
	}

	if *sensorFile != "" {
		readings, err := readSensorFile(*sensorFile)
		if err != nil {
			logrus.Fatalf("Failed to read sensor file %s: %v", *sensorFile, err)
		}
		incidents, err := ingestor.IngestSensorReadings(ctx, readings)
		if err != nil {
			logrus.Fatalf("Failed to ingest sensor readings: %v", err)
		}
		created += len(incidents)
	}

	logrus.Infof("Correlation pass complete: %d incidents created", created)
}

func readLogLines(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var lines []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			logrus.Warnf("Skipping unreadable log file %s: %v", entry.Name(), err)
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			logrus.Warnf("Error scanning %s: %v", entry.Name(), err)
		}
	}
	return lines, nil
}

func readSensorFile(path string) ([]ingest.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var readings []ingest.SensorReading
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(strings.TrimSpace(scanner.Text()), ",", 3)
		if len(parts) < 3 {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}
		readings = append(readings, ingest.SensorReading{
			Timestamp: strings.TrimSpace(parts[0]),
			Type:      strings.TrimSpace(parts[1]),
			Value:     value,
		})
	}
	return readings, scanner.Err()
}
