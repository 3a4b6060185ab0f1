package models

import "time"

// Case is one investigation on the target host. Stored in the case database;
// all on-disk artifacts (quarantine, journals) live under the case directory.
type Case struct {
	ID        string     `json:"id"         db:"id"`
	Name      string     `json:"name"       db:"name"`
	Operator  string     `json:"operator"   db:"operator"`
	Hostname  string     `json:"hostname"   db:"hostname"`
	Status    string     `json:"status"     db:"status"` // open|closed
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"  db:"closed_at"`
}

// PersistSnapshot is the persisted aggregate of one persistence scan,
// used as the baseline for new-since-baseline detection on the next run.
type PersistSnapshot struct {
	ID        int64     `json:"id"         db:"id"`
	CaseID    string    `json:"case_id"    db:"case_id"`
	TakenAt   time.Time `json:"taken_at"   db:"taken_at"`
	ItemCount int       `json:"item_count" db:"item_count"`
	Flagged   int       `json:"flagged"    db:"flagged"`
	// Items is the JSON-encoded []PersistItem aggregate.
	Items string `json:"items" db:"items"`
}

// AuditEvent is one structured entry in the case audit timeline.
type AuditEvent struct {
	ID        int64     `json:"id"        db:"id"`
	CaseID    string    `json:"case_id"   db:"case_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Tab       string    `json:"tab"       db:"tab"`
	Action    string    `json:"action"    db:"action"`
	Severity  string    `json:"severity"  db:"severity"`
	Target    string    `json:"target"    db:"target"`
	Details   string    `json:"details"   db:"details"`
}
