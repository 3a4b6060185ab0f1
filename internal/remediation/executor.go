package remediation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"hostmedic/internal/journal"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// disabledStart is the Start DWORD value that disables a service.
const disabledStart = 4

// Executor carries queued cleanup actions out against the host. All system
// access goes through the facility, so the whole execution path is testable
// against the mock.
type Executor struct {
	fac     *winsys.Facility
	queue   *Queue
	journal *journal.CleanupJournal

	// caseDir is the per-case quarantine root holding files/ and registry/.
	caseDir string
}

// NewExecutor wires an executor for one case session.
func NewExecutor(fac *winsys.Facility, q *Queue, j *journal.CleanupJournal, caseDir string) *Executor {
	return &Executor{fac: fac, queue: q, journal: j, caseDir: caseDir}
}

// FilesDir is where quarantined file copies land.
func (e *Executor) FilesDir() string { return filepath.Join(e.caseDir, "files") }

// RegistryDir is where exported .reg backups land.
func (e *Executor) RegistryDir() string { return filepath.Join(e.caseDir, "registry") }

// Execute runs one queued item to a terminal state. The journal write
// happens before the result is returned; a failed journal write downgrades
// to a warning on the result instead of failing the action.
func (e *Executor) Execute(ctx context.Context, id string) models.ActionResult {
	item, ok := e.queue.Get(id)
	if !ok {
		return models.ActionResult{ItemID: id, Status: models.StatusFailed, Message: ErrNotQueued.Error()}
	}
	if err := e.queue.Transition(id, models.StatusInProgress, ""); err != nil {
		return models.ActionResult{ItemID: id, Status: item.Status, Message: err.Error()}
	}

	entry, outcome := e.perform(ctx, item)
	if outcome.failed() && !outcome.partial {
		_ = e.queue.Transition(id, models.StatusFailed, outcome.errMsg)
		return models.ActionResult{ItemID: id, Status: models.StatusFailed, Message: outcome.errMsg}
	}

	result := models.ActionResult{
		ItemID:         id,
		Status:         models.StatusCompleted,
		PartialSuccess: outcome.partial,
		BackupPath:     outcome.backupPath,
	}
	if outcome.partial {
		result.Message = "original renamed with " + quarantineSuffix + " suffix; content neutralised"
	}
	if err := e.journal.Record(entry); err != nil {
		slog.Warn("journal write failed", "item", id, "error", err)
		result.JournalWarning = "journal write failed, undo history for this action may be lost: " + err.Error()
	}
	if outcome.backupPath != "" {
		e.queue.SetBackupPath(id, outcome.backupPath)
	}
	_ = e.queue.Transition(id, models.StatusCompleted, "")
	return result
}

// ExecuteAll runs every pending item strictly sequentially, in enqueue
// order. Each item finishes, journal write included, before the next starts;
// journal append order therefore matches real action order.
func (e *Executor) ExecuteAll(ctx context.Context) models.BatchSummary {
	var summary models.BatchSummary
	for _, id := range e.queue.Pending() {
		res := e.Execute(ctx, id)
		summary.Results = append(summary.Results, res)
		switch {
		case res.Status != models.StatusCompleted:
			summary.Failed++
		case res.PartialSuccess:
			summary.Partial++
			summary.Succeeded++
		default:
			summary.Succeeded++
		}
	}
	return summary
}

// perform dispatches on the staged action and returns the journal entry to
// record on success. A failed registry-key delete after a good export
// returns a zero entry; nothing is journaled because nothing changed.
func (e *Executor) perform(ctx context.Context, item models.CleanupItem) (models.CleanupJournalEntry, quarantineOutcome) {
	entry := models.CleanupJournalEntry{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		Action:    item.Action,
		Timestamp: time.Now().UTC(),
		ItemType:  item.Type,
		Name:      item.Name,
	}

	switch {
	case item.Action == models.ActionQuarantine:
		dest := filepath.Join(e.FilesDir(), item.ID+"_"+filepath.Base(item.OriginalPath))
		outcome := quarantineFile(item.OriginalPath, dest)
		entry.PrevState = item.OriginalPath
		entry.NewState = dest
		entry.BackupData = dest
		return entry, outcome

	case item.Type == models.ItemService && item.Action == models.ActionDisable:
		return e.disableService(ctx, item, entry)

	case item.Type == models.ItemScheduledTask && item.Action == models.ActionDisable:
		res := e.fac.Tasks.Disable(ctx, item.OriginalPath)
		if !res.Ok() {
			return entry, quarantineOutcome{errMsg: procError("disable task", res)}
		}
		entry.PrevState = "enabled"
		entry.NewState = "disabled"
		entry.BackupData = item.OriginalPath
		return entry, quarantineOutcome{}

	case item.Type == models.ItemRegistryKey:
		return e.backupAndDeleteKey(ctx, item, entry)

	default:
		return entry, quarantineOutcome{errMsg: fmt.Sprintf("unsupported action %s for %s", item.Action, item.Type)}
	}
}

// disableService records the current Start value, sets it to Disabled and
// best-effort stops the running service. Succeeds whenever the registry key
// exists.
func (e *Executor) disableService(ctx context.Context, item models.CleanupItem, entry models.CleanupJournalEntry) (models.CleanupJournalEntry, quarantineOutcome) {
	keyPath := item.OriginalPath
	prev, err := e.fac.Registry.DWordValue(keyPath, "Start")
	if err != nil {
		return entry, quarantineOutcome{errMsg: "service registry key not readable: " + err.Error()}
	}
	if err := e.fac.Registry.SetDWordValue(keyPath, "Start", disabledStart); err != nil {
		return entry, quarantineOutcome{errMsg: "cannot set Start value: " + err.Error()}
	}

	svcName := keyPath
	if idx := strings.LastIndex(keyPath, `\`); idx >= 0 {
		svcName = keyPath[idx+1:]
	}
	if err := e.fac.Services.Stop(ctx, svcName); err != nil {
		slog.Debug("service stop failed", "service", svcName, "error", err)
	}

	entry.PrevState = strconv.FormatUint(uint64(prev), 10)
	entry.NewState = strconv.Itoa(disabledStart)
	entry.BackupData = keyPath
	return entry, quarantineOutcome{}
}

// backupAndDeleteKey exports the key and verifies the backup file exists on
// disk before deleting. A delete failure after a good export is reported
// Failed with the backup left in place for a manual retry.
func (e *Executor) backupAndDeleteKey(ctx context.Context, item models.CleanupItem, entry models.CleanupJournalEntry) (models.CleanupJournalEntry, quarantineOutcome) {
	if err := os.MkdirAll(e.RegistryDir(), 0o755); err != nil {
		return entry, quarantineOutcome{errMsg: "cannot create backup directory: " + err.Error()}
	}
	backupFile := filepath.Join(e.RegistryDir(), item.ID+".reg")

	res := e.fac.RegTool.Export(ctx, item.OriginalPath, backupFile)
	if !res.Ok() {
		return entry, quarantineOutcome{errMsg: procError("export key", res)}
	}
	if _, err := os.Stat(backupFile); err != nil {
		return entry, quarantineOutcome{errMsg: "export produced no backup file, key not deleted"}
	}

	if err := e.fac.Registry.DeleteKey(item.OriginalPath); err != nil {
		return entry, quarantineOutcome{
			errMsg: "delete failed, backup at " + backupFile + " remains valid for retry: " + err.Error(),
		}
	}

	entry.PrevState = item.OriginalPath
	entry.NewState = "deleted"
	entry.BackupData = backupFile
	return entry, quarantineOutcome{backupPath: backupFile}
}

func procError(what string, res winsys.ProcResult) string {
	if res.TimedOut {
		return what + ": timed out"
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	return fmt.Sprintf("%s: exit %d: %s", what, res.ExitCode, msg)
}
