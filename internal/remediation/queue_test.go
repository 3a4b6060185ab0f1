package remediation

import (
	"testing"

	"hostmedic/models"
)

func fileItem(path string) models.CleanupItem {
	return models.CleanupItem{
		Type:         models.ItemFile,
		Name:         "evil.exe",
		OriginalPath: path,
		SourceTab:    "Sweep",
		Severity:     models.SeverityHigh,
	}
}

func TestEnqueueDedupIsCaseInsensitive(t *testing.T) {
	q := NewQueue()
	if !q.Enqueue(fileItem(`C:\Temp\evil.exe`)) {
		t.Fatal("first enqueue rejected")
	}
	if q.Enqueue(fileItem(`c:\temp\EVIL.EXE`)) {
		t.Error("duplicate path accepted")
	}
	if q.Len() != 1 {
		t.Errorf("queue len = %d", q.Len())
	}
}

func TestEnqueueFillsDefaults(t *testing.T) {
	q := NewQueue()
	q.Enqueue(fileItem(`C:\Temp\evil.exe`))
	item := q.Items()[0]
	if item.ID == "" {
		t.Error("no id generated")
	}
	if item.Action != models.ActionQuarantine {
		t.Errorf("action = %s", item.Action)
	}
	if item.Status != models.StatusPending {
		t.Errorf("status = %s", item.Status)
	}
	if item.QueuedAt.IsZero() {
		t.Error("QueuedAt not stamped")
	}

	svc := models.CleanupItem{Type: models.ItemService, OriginalPath: `HKLM\SYSTEM\CurrentControlSet\Services\Evil`}
	q.Enqueue(svc)
	if got := q.Items()[1].Action; got != models.ActionDisable {
		t.Errorf("service default action = %s", got)
	}
	reg := models.CleanupItem{Type: models.ItemRegistryKey, OriginalPath: `HKLM\Software\Evil`}
	q.Enqueue(reg)
	if got := q.Items()[2].Action; got != models.ActionBackupAndDelete {
		t.Errorf("registry default action = %s", got)
	}
}

func TestDequeueRules(t *testing.T) {
	q := NewQueue()
	q.Enqueue(fileItem(`C:\Temp\a.exe`))
	id := q.Items()[0].ID

	if err := q.Dequeue("unknown"); err != ErrNotQueued {
		t.Errorf("err = %v", err)
	}

	_ = q.Transition(id, models.StatusInProgress, "")
	_ = q.Transition(id, models.StatusCompleted, "")
	if err := q.Dequeue(id); err != ErrCompleted {
		t.Errorf("completed item dequeue err = %v", err)
	}

	_ = q.Transition(id, models.StatusUndone, "")
	if err := q.Dequeue(id); err != nil {
		t.Errorf("undone item dequeue err = %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("queue len = %d", q.Len())
	}
}

func TestTransitionStateMachine(t *testing.T) {
	q := NewQueue()
	q.Enqueue(fileItem(`C:\Temp\a.exe`))
	id := q.Items()[0].ID

	if err := q.Transition(id, models.StatusCompleted, ""); err == nil {
		t.Error("Pending -> Completed allowed")
	}
	if err := q.Transition(id, models.StatusInProgress, ""); err != nil {
		t.Fatal(err)
	}
	if err := q.Transition(id, models.StatusFailed, "boom"); err != nil {
		t.Fatal(err)
	}

	item, _ := q.Get(id)
	if item.ErrorMsg != "boom" {
		t.Errorf("ErrorMsg = %q", item.ErrorMsg)
	}
	if item.ExecutedAt == nil {
		t.Error("terminal transition did not stamp ExecutedAt")
	}
	// Failed items stay put.
	if err := q.Transition(id, models.StatusInProgress, ""); err == nil {
		t.Error("Failed -> InProgress allowed")
	}
}

func TestPendingOrder(t *testing.T) {
	q := NewQueue()
	q.Enqueue(fileItem(`C:\Temp\a.exe`))
	q.Enqueue(fileItem(`C:\Temp\b.exe`))
	q.Enqueue(fileItem(`C:\Temp\c.exe`))
	mid := q.Items()[1].ID
	_ = q.Transition(mid, models.StatusInProgress, "")

	ids := q.Pending()
	if len(ids) != 2 {
		t.Fatalf("pending = %d", len(ids))
	}
	if ids[0] != q.Items()[0].ID || ids[1] != q.Items()[2].ID {
		t.Error("pending order does not match enqueue order")
	}
}
