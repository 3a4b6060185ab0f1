package models

import "time"

// CollectorStatus is the structured per-collector outcome of a scan run.
// A failed collector contributes zero entries but never aborts the batch.
type CollectorStatus string

const (
	CollectorSuccess CollectorStatus = "success"
	CollectorPartial CollectorStatus = "partial"
	CollectorFailed  CollectorStatus = "failed"
)

// CollectorResult reports one collector's contribution to a scan.
type CollectorResult struct {
	Collector string          `json:"collector"`
	Status    CollectorStatus `json:"status"`
	Count     int             `json:"count"`
	Errors    []string        `json:"errors,omitempty"`
	Duration  time.Duration   `json:"duration_ms"`
}

// ScanReport aggregates a whole persistence scan or sweep run.
type ScanReport struct {
	CaseID     string            `json:"case_id"`
	Kind       string            `json:"kind"` // persist|sweep|harden
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Collectors []CollectorResult `json:"collectors"`
	Total      int               `json:"total"`
	Flagged    int               `json:"flagged"`
	Truncated  bool              `json:"truncated,omitempty"`
}

// Degraded reports whether any collector finished less than fully successful.
func (r ScanReport) Degraded() bool {
	for _, c := range r.Collectors {
		if c.Status != CollectorSuccess {
			return true
		}
	}
	return false
}

// ActionResult is the outcome of executing (or undoing) one remediation.
type ActionResult struct {
	ItemID  string        `json:"item_id"`
	Status  CleanupStatus `json:"status"`
	Message string        `json:"message,omitempty"`
	// PartialSuccess marks the copy-then-rename quarantine fallback: the
	// artifact was neutralised but the original could not be removed.
	PartialSuccess bool `json:"partial_success,omitempty"`
	// JournalWarning is set when the action succeeded but its journal entry
	// could not be persisted; undo history for this action is lost.
	JournalWarning string `json:"journal_warning,omitempty"`
	BackupPath     string `json:"backup_path,omitempty"`
}

// BatchSummary is the aggregate "N succeeded, M failed" report of a batch
// execution or bulk undo.
type BatchSummary struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Partial   int            `json:"partial"`
	Results   []ActionResult `json:"results"`
}
