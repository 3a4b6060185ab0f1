package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hostmedic/models"
)

// Typed case-store operations on top of the generic DB interface.

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CreateCase inserts a new case record.
func CreateCase(ctx context.Context, db DB, c models.Case) error {
	if _, err := db.Insert(ctx, "cases", caseRow{
		CaseID:    c.ID,
		Name:      c.Name,
		Operator:  c.Operator,
		Hostname:  c.Hostname,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		ClosedAt:  c.ClosedAt,
	}); err != nil {
		return fmt.Errorf("creating case %s: %w", c.ID, err)
	}
	return nil
}

// GetCase loads one case by id.
func GetCase(ctx context.Context, db DB, id string) (*models.Case, error) {
	var rows []caseRow
	err := db.Select(ctx, &rows,
		`SELECT id, name, operator, hostname, status, created_at, closed_at
		 FROM cases WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	c := rows[0].toCase()
	return &c, nil
}

// ListCases returns all cases, newest first.
func ListCases(ctx context.Context, db DB) ([]models.Case, error) {
	var rows []caseRow
	err := db.Select(ctx, &rows,
		`SELECT id, name, operator, hostname, status, created_at, closed_at
		 FROM cases ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]models.Case, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCase())
	}
	return out, nil
}

// SaveSnapshot persists the aggregate of a completed persistence scan. It
// becomes the baseline for the next run's new-since-baseline flags.
func SaveSnapshot(ctx context.Context, db DB, caseID string, items []models.PersistItem) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	flagged := 0
	for _, it := range items {
		if it.Risk.IsFlagged() {
			flagged++
		}
	}
	_, err = db.Insert(ctx, "persist_snapshots", models.PersistSnapshot{
		CaseID:    caseID,
		TakenAt:   time.Now().UTC(),
		ItemCount: len(items),
		Flagged:   flagged,
		Items:     string(blob),
	})
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a case, or ErrNotFound
// when the case has never been scanned.
func LatestSnapshot(ctx context.Context, db DB, caseID string) ([]models.PersistItem, error) {
	var rows []models.PersistSnapshot
	err := db.Select(ctx, &rows,
		`SELECT id, case_id, taken_at, item_count, flagged, items
		 FROM persist_snapshots WHERE case_id = ?
		 ORDER BY taken_at DESC LIMIT 1`, caseID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	var items []models.PersistItem
	if err := json.Unmarshal([]byte(rows[0].Items), &items); err != nil {
		return nil, fmt.Errorf("decoding snapshot %d: %w", rows[0].ID, err)
	}
	return items, nil
}

// InsertAuditEvent appends one event to the case timeline.
func InsertAuditEvent(ctx context.Context, db DB, evt models.AuditEvent) error {
	_, err := db.Insert(ctx, "audit_events", evt)
	return err
}

// ListAuditEvents returns a case's timeline, oldest first.
func ListAuditEvents(ctx context.Context, db DB, caseID string) ([]models.AuditEvent, error) {
	var rows []models.AuditEvent
	err := db.Select(ctx, &rows,
		`SELECT id, case_id, timestamp, tab, action, severity, target, details
		 FROM audit_events WHERE case_id = ? ORDER BY timestamp ASC, id ASC`, caseID)
	return rows, err
}

// caseRow mirrors the cases table; ClosedAt is nullable.
type caseRow struct {
	CaseID    string     `db:"id"`
	Name      string     `db:"name"`
	Operator  string     `db:"operator"`
	Hostname  string     `db:"hostname"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	ClosedAt  *time.Time `db:"closed_at"`
}

func (r caseRow) toCase() models.Case {
	return models.Case{
		ID:        r.CaseID,
		Name:      r.Name,
		Operator:  r.Operator,
		Hostname:  r.Hostname,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		ClosedAt:  r.ClosedAt,
	}
}
