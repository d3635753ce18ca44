package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

const eventColumns = `id, incident_id, timestamp, kind, actor, description`

func insertEvent(ctx context.Context, tx *sql.Tx, ev models.TimelineEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO timeline_events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.IncidentID, ev.Timestamp.UTC(), string(ev.Kind), ev.Actor, ev.Description)
	if err != nil {
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

// AppendEvents appends timeline events without touching incident state.
// Used by the note-only submission path.
func (s *Store) AppendEvents(ctx context.Context, events []models.TimelineEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		if err := insertEvent(ctx, tx, ev); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// EventsByIncident returns the full event sequence of one incident,
// ascending by timestamp. An unknown incident id yields an empty slice,
// not an error: timeline entries survive independently for audit.
func (s *Store) EventsByIncident(ctx context.Context, incidentID string) ([]models.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM timeline_events WHERE incident_id = ? ORDER BY timestamp ASC, rowid ASC`,
		incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline for %s: %w", incidentID, err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// EventsInRange returns events across all incidents with start <= t <= end,
// ascending by timestamp. Bound validation is the caller's concern.
func (s *Store) EventsInRange(ctx context.Context, start, end time.Time) ([]models.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM timeline_events WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp ASC, rowid ASC`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline range: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// AllEvents returns the complete forensic history across all incidents,
// ascending by timestamp
func (s *Store) AllEvents(ctx context.Context) ([]models.TimelineEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM timeline_events ORDER BY timestamp ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]models.TimelineEvent, error) {
	events := make([]models.TimelineEvent, 0)
	for rows.Next() {
		var ev models.TimelineEvent
		var kind string
		var ts time.Time
		if err := rows.Scan(&ev.ID, &ev.IncidentID, &ts, &kind, &ev.Actor, &ev.Description); err != nil {
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}
		ev.Kind = models.EventKind(kind)
		ev.Timestamp = ts.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}
