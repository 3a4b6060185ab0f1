package models

import "time"

// CleanupJournalEntry is one append-only record of an executed remediation
// action. Entries are never mutated after being recorded except to flip the
// Undone flag and stamp UndoneAt; everything else is permanent history.
type CleanupJournalEntry struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	Action     ActionKind `json:"action"`
	Timestamp  time.Time  `json:"timestamp"`
	ItemType   ItemType   `json:"item_type"`
	Name       string     `json:"name"`
	PrevState  string     `json:"prev_state"`
	NewState   string     `json:"new_state"`
	BackupData string     `json:"backup_data,omitempty"`
	Undone     bool       `json:"undone"`
	UndoneAt   *time.Time `json:"undone_at,omitempty"`
}

// HardenJournalEntry is the hardening counterpart of CleanupJournalEntry.
// Structurally identical discipline: append-only, RolledBack flip only.
type HardenJournalEntry struct {
	ID           string     `json:"id"`
	ActionID     string     `json:"action_id"`
	Category     string     `json:"category"`
	Name         string     `json:"name"`
	Timestamp    time.Time  `json:"timestamp"`
	PrevState    string     `json:"prev_state"`
	NewState     string     `json:"new_state"`
	RollbackData string     `json:"rollback_data,omitempty"`
	RolledBack   bool       `json:"rolled_back"`
	RolledBackAt *time.Time `json:"rolled_back_at,omitempty"`
}
