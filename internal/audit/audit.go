// Package audit records the case timeline: one structured event per
// significant transition, written to the case database and mirrored to the
// structured log.
package audit

import (
	"context"
	"log/slog"
	"time"

	"hostmedic/internal/database"
	"hostmedic/models"
)

// Sink writes audit events for one case. A nil Sink drops events, so callers
// never have to guard their emits.
type Sink struct {
	db     database.DB
	caseID string
}

// NewSink creates a sink bound to a case.
func NewSink(db database.DB, caseID string) *Sink {
	return &Sink{db: db, caseID: caseID}
}

// Emit records one event. Audit failures are logged and swallowed; the
// timeline is an observability aid, not a gate on the action itself.
func (s *Sink) Emit(ctx context.Context, tab, action, severity, target, details string) {
	if s == nil {
		return
	}
	evt := models.AuditEvent{
		CaseID:    s.caseID,
		Timestamp: time.Now().UTC(),
		Tab:       tab,
		Action:    action,
		Severity:  severity,
		Target:    target,
		Details:   details,
	}
	if err := database.InsertAuditEvent(ctx, s.db, evt); err != nil {
		slog.Warn("audit event not recorded", "action", action, "target", target, "error", err)
	}
	slog.Info("audit", "case", s.caseID, "tab", tab, "action", action, "severity", severity, "target", target)
}

// Timeline returns the recorded events for the sink's case, oldest first.
func (s *Sink) Timeline(ctx context.Context) ([]models.AuditEvent, error) {
	return database.ListAuditEvents(ctx, s.db, s.caseID)
}
