package remediation

import (
	"context"
	"fmt"
	"strconv"

	"hostmedic/models"
)

// Undo reverses one journaled action by its entry id. A failed undo leaves
// the entry marked not-undone so a retry remains possible.
func (e *Executor) Undo(ctx context.Context, entryID string) models.ActionResult {
	entry, ok := e.journal.Get(entryID)
	if !ok {
		return models.ActionResult{Status: models.StatusFailed, Message: "journal entry not found"}
	}
	if entry.Undone {
		return models.ActionResult{ItemID: entry.ItemID, Status: models.StatusFailed, Message: "action already undone"}
	}

	if err := e.revert(ctx, entry); err != nil {
		return models.ActionResult{ItemID: entry.ItemID, Status: models.StatusFailed, Message: err.Error()}
	}

	result := models.ActionResult{ItemID: entry.ItemID, Status: models.StatusUndone}
	if err := e.journal.MarkUndone(entry.ID); err != nil {
		result.JournalWarning = "undo applied but journal update failed: " + err.Error()
	}
	// The queue may have been cleared since the action ran; missing items
	// are fine, the journal is the durable record.
	_ = e.queue.Transition(entry.ItemID, models.StatusUndone, "")
	return result
}

// UndoLast reverses the most recent not-yet-undone journal entry. The bool
// is false when the journal has nothing left to undo.
func (e *Executor) UndoLast(ctx context.Context) (models.ActionResult, bool) {
	entry, ok := e.journal.GetLastUndoable()
	if !ok {
		return models.ActionResult{}, false
	}
	return e.Undo(ctx, entry.ID), true
}

// UndoAll reverses every not-yet-undone journal entry, newest first, so
// dependent actions unwind in reverse of the order they ran. A failed undo
// is counted and left retryable; the walk continues past it.
func (e *Executor) UndoAll(ctx context.Context) models.BatchSummary {
	var summary models.BatchSummary
	entries := e.journal.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Undone {
			continue
		}
		res := e.Undo(ctx, entries[i].ID)
		summary.Results = append(summary.Results, res)
		if res.Status == models.StatusUndone {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// revert is the typed dispatch over the recorded action.
func (e *Executor) revert(ctx context.Context, entry models.CleanupJournalEntry) error {
	switch {
	case entry.Action == models.ActionQuarantine:
		return restoreQuarantinedFile(entry.BackupData, entry.PrevState)

	case entry.ItemType == models.ItemService && entry.Action == models.ActionDisable:
		prev, err := strconv.ParseUint(entry.PrevState, 10, 32)
		if err != nil {
			return fmt.Errorf("journal entry carries no valid Start value: %w", err)
		}
		if err := e.fac.Registry.SetDWordValue(entry.BackupData, "Start", uint32(prev)); err != nil {
			return fmt.Errorf("cannot restore Start value: %w", err)
		}
		return nil

	case entry.ItemType == models.ItemScheduledTask && entry.Action == models.ActionDisable:
		if res := e.fac.Tasks.Enable(ctx, entry.BackupData); !res.Ok() {
			return fmt.Errorf("%s", procError("enable task", res))
		}
		return nil

	case entry.Action == models.ActionBackupAndDelete:
		if res := e.fac.RegTool.Import(ctx, entry.BackupData); !res.Ok() {
			return fmt.Errorf("backup file missing or unreadable, cannot restore: %s", procError("import key", res))
		}
		return nil

	default:
		return fmt.Errorf("no undo handler for %s on %s", entry.Action, entry.ItemType)
	}
}
