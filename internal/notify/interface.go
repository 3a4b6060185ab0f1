package notify

import "context"

// Event represents a notification event from hostmedic.
type Event struct {
	Type     string         // "scan_completed" | "high_risk_finding" | "item_executed" | "item_undone"
	Title    string
	Body     string
	Severity string         // "high" | "medium" | "low" | ""
	CaseID   string
	Target   string         // path, service or key the event is about
	Metadata map[string]any // extra structured data
}

// Channel is implemented by each notification provider.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, evt Event) error
}
