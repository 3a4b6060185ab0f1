package harden

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"hostmedic/internal/journal"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// absentState is recorded when the control's value did not exist.
const absentState = "absent"

// Engine drives hardening for one case session.
type Engine struct {
	fac      *winsys.Facility
	journal  *journal.HardenJournal
	controls []control
}

// NewEngine loads the embedded catalog and wires the engine.
func NewEngine(fac *winsys.Facility, j *journal.HardenJournal) (*Engine, error) {
	controls, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return &Engine{fac: fac, journal: j, controls: controls}, nil
}

// Scan regenerates the action catalog with current-state detection. Actions
// already in the recommended state come back with Applied set.
func (e *Engine) Scan() []models.HardenAction {
	actions := make([]models.HardenAction, 0, len(e.controls))
	for _, c := range e.controls {
		cur, ok := e.currentState(c)
		actions = append(actions, models.HardenAction{
			ID:           c.ID,
			Category:     c.Category,
			Name:         c.Name,
			Description:  c.Description,
			CurrentState: cur,
			Recommended:  c.Recommended,
			Applied:      ok,
			Warning:      c.Warning,
		})
	}
	return actions
}

// currentState reads the control's value and reports whether it is already
// compliant.
func (e *Engine) currentState(c control) (string, bool) {
	v, err := e.fac.Registry.DWordValue(c.Key, c.Value)
	if err != nil {
		return absentState, c.AbsentOK
	}
	return c.Value + "=" + strconv.FormatUint(uint64(v), 10), v == c.Desired
}

// Apply enforces the selected controls in catalog order. Each change is
// journaled with the observed previous value before the next control runs.
func (e *Engine) Apply(ids []string) models.BatchSummary {
	selected := map[string]bool{}
	for _, id := range ids {
		selected[id] = true
	}

	var summary models.BatchSummary
	for _, c := range e.controls {
		if !selected[c.ID] {
			continue
		}
		res := e.applyOne(c)
		summary.Results = append(summary.Results, res)
		if res.Status == models.StatusCompleted {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func (e *Engine) applyOne(c control) models.ActionResult {
	prev := absentState
	if v, err := e.fac.Registry.DWordValue(c.Key, c.Value); err == nil {
		prev = strconv.FormatUint(uint64(v), 10)
		if v == c.Desired {
			return models.ActionResult{ItemID: c.ID, Status: models.StatusCompleted, Message: "already compliant"}
		}
	} else if c.AbsentOK {
		return models.ActionResult{ItemID: c.ID, Status: models.StatusCompleted, Message: "already compliant"}
	}

	if err := e.fac.Registry.SetDWordValue(c.Key, c.Value, c.Desired); err != nil {
		return models.ActionResult{ItemID: c.ID, Status: models.StatusFailed, Message: err.Error()}
	}

	result := models.ActionResult{ItemID: c.ID, Status: models.StatusCompleted}
	err := e.journal.Record(models.HardenJournalEntry{
		ID:           uuid.NewString(),
		ActionID:     c.ID,
		Category:     c.Category,
		Name:         c.Name,
		Timestamp:    time.Now().UTC(),
		PrevState:    prev,
		NewState:     strconv.FormatUint(uint64(c.Desired), 10),
		RollbackData: prev,
	})
	if err != nil {
		slog.Warn("harden journal write failed", "control", c.ID, "error", err)
		result.JournalWarning = "journal write failed, rollback history for this control may be lost: " + err.Error()
	}
	return result
}

// Rollback reverses one journaled control change. Protective controls are
// no-ops: the journal entry is marked rolled back without touching the host.
func (e *Engine) Rollback(entryID string) models.ActionResult {
	entry, ok := e.journal.Get(entryID)
	if !ok {
		return models.ActionResult{Status: models.StatusFailed, Message: "journal entry not found"}
	}
	if entry.RolledBack {
		return models.ActionResult{ItemID: entry.ActionID, Status: models.StatusFailed, Message: "control already rolled back"}
	}
	c, ok := e.controlByID(entry.ActionID)
	if !ok {
		return models.ActionResult{ItemID: entry.ActionID, Status: models.StatusFailed, Message: "control no longer in catalog"}
	}

	if !c.Protective {
		restore := c.RollbackDefault
		if entry.RollbackData != absentState {
			v, err := strconv.ParseUint(entry.RollbackData, 10, 32)
			if err != nil {
				return models.ActionResult{ItemID: c.ID, Status: models.StatusFailed, Message: "journal entry carries no valid previous value"}
			}
			restore = uint32(v)
		}
		if err := e.fac.Registry.SetDWordValue(c.Key, c.Value, restore); err != nil {
			return models.ActionResult{ItemID: c.ID, Status: models.StatusFailed, Message: err.Error()}
		}
	}

	result := models.ActionResult{ItemID: c.ID, Status: models.StatusUndone}
	if c.Protective {
		result.Message = fmt.Sprintf("%s stays enforced; protective controls are not rolled back", c.Name)
	}
	if err := e.journal.MarkUndone(entry.ID); err != nil {
		result.JournalWarning = "rollback applied but journal update failed: " + err.Error()
	}
	return result
}

// RollbackLast reverses the most recent not-yet-rolled-back change. The bool
// is false when nothing is left to roll back.
func (e *Engine) RollbackLast() (models.ActionResult, bool) {
	entry, ok := e.journal.GetLastUndoable()
	if !ok {
		return models.ActionResult{}, false
	}
	return e.Rollback(entry.ID), true
}

func (e *Engine) controlByID(id string) (control, bool) {
	for _, c := range e.controls {
		if c.ID == id {
			return c, true
		}
	}
	return control{}, false
}
