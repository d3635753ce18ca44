package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sentinelsoc/incident-engine/pkg/models"
)

// severityRankExpr orders HIGH before MEDIUM before LOW server-side, so
// every polling client observes the same queue ordering.
const severityRankExpr = `CASE severity WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END`

// CreateIncident inserts a new incident together with its CREATED
// timeline event in a single transaction. Either both rows commit or
// neither does.
func (s *Store) CreateIncident(ctx context.Context, inc *models.Incident, created models.TimelineEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO incidents (id, description, source, severity, status, created_at, closed_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		inc.ID, inc.Description, string(inc.Source), string(inc.Severity), string(inc.Status), inc.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}

	if err := insertEvent(ctx, tx, created); err != nil {
		return err
	}

	return tx.Commit()
}

// GetIncident loads one incident by id
func (s *Store) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, source, severity, status, created_at, closed_at
		 FROM incidents WHERE id = ?`, id)

	inc, err := scanIncident(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query incident %s: %w", id, err)
	}
	return inc, nil
}

// ListIncidents returns all incidents, optionally filtered by source,
// ordered by severity rank descending then created_at ascending.
func (s *Store) ListIncidents(ctx context.Context, source models.Source) ([]*models.Incident, error) {
	query := `SELECT id, description, source, severity, status, created_at, closed_at FROM incidents`
	args := []interface{}{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY ` + severityRankExpr + ` DESC, created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// UpdateIncidentStatus applies a validated status change and appends the
// accompanying timeline events in one transaction. The caller (the
// lifecycle state machine) holds the per-incident lock and has already
// validated the transition; this is the only status mutator.
func (s *Store) UpdateIncidentStatus(ctx context.Context, id string, status models.Status, closedAt *time.Time, events []models.TimelineEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if closedAt != nil {
		ts := closedAt.UTC()
		res, err = tx.ExecContext(ctx,
			`UPDATE incidents SET status = ?, closed_at = ? WHERE id = ?`,
			string(status), ts, id)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE incidents SET status = ? WHERE id = ?`,
			string(status), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update incident %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	for _, ev := range events {
		if err := insertEvent(ctx, tx, ev); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	var inc models.Incident
	var source, severity, status string
	var createdAt time.Time
	var closedAt sql.NullTime

	if err := row.Scan(&inc.ID, &inc.Description, &source, &severity, &status, &createdAt, &closedAt); err != nil {
		return nil, err
	}

	inc.Source = models.Source(source)
	inc.Severity = models.Severity(severity)
	inc.Status = models.Status(status)
	inc.CreatedAt = createdAt.UTC()
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		inc.ClosedAt = &t
	}
	return &inc, nil
}
