package models

import "time"

// ItemType identifies what kind of object a CleanupItem targets.
type ItemType string

const (
	ItemFile          ItemType = "File"
	ItemService       ItemType = "Service"
	ItemScheduledTask ItemType = "ScheduledTask"
	ItemRegistryKey   ItemType = "RegistryKey"
	ItemStartupItem   ItemType = "StartupItem"
)

// ActionKind is the remediation action staged for an item.
type ActionKind string

const (
	ActionQuarantine      ActionKind = "Quarantine"
	ActionDisable         ActionKind = "Disable"
	ActionDelete          ActionKind = "Delete"
	ActionBackupAndDelete ActionKind = "BackupAndDelete"
)

// DefaultAction returns the action kind normally staged for an item type.
func (t ItemType) DefaultAction() ActionKind {
	switch t {
	case ItemFile, ItemStartupItem:
		return ActionQuarantine
	case ItemService, ItemScheduledTask:
		return ActionDisable
	case ItemRegistryKey:
		return ActionBackupAndDelete
	default:
		return ActionQuarantine
	}
}

// CleanupStatus is the lifecycle state of a queued remediation item.
type CleanupStatus string

const (
	StatusPending    CleanupStatus = "Pending"
	StatusInProgress CleanupStatus = "InProgress"
	StatusCompleted  CleanupStatus = "Completed"
	StatusFailed     CleanupStatus = "Failed"
	StatusUndone     CleanupStatus = "Undone"
)

// CanTransition reports whether moving from s to next is a legal step in the
// item state machine. Undone is terminal; an item cannot be redone.
func (s CleanupStatus) CanTransition(next CleanupStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted:
		return next == StatusUndone
	case StatusFailed:
		// Failed items stay put; the operator removes and re-stages them.
		return false
	default:
		return false
	}
}

// IsTerminal reports whether s ends an execution attempt.
func (s CleanupStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusUndone
}

// CleanupItem is a queued remediation unit. At most one item per distinct
// original path (case-insensitive) may exist in a queue at a time.
type CleanupItem struct {
	ID           string        `json:"id"`
	Type         ItemType      `json:"type"`
	Name         string        `json:"name"`
	OriginalPath string        `json:"original_path"`
	BackupPath   string        `json:"backup_path,omitempty"`
	SourceTab    string        `json:"source_tab"`
	Severity     SeverityLevel `json:"severity"`
	Reason       string        `json:"reason"`
	Action       ActionKind    `json:"action"`
	Status       CleanupStatus `json:"status"`
	QueuedAt     time.Time     `json:"queued_at"`
	ExecutedAt   *time.Time    `json:"executed_at,omitempty"`
	ErrorMsg     string        `json:"error_msg,omitempty"`
}
