package remediation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostmedic/models"
)

var errInUse = errors.New("the process cannot access the file because it is being used by another process")

// swapSeams replaces the file-op seams for one test and restores them after.
func swapSeams(t *testing.T, rename func(string, string) error, remove func(string) error) {
	t.Helper()
	origRename, origRemove := renameFile, removeFile
	renameFile, removeFile = rename, remove
	t.Cleanup(func() {
		renameFile, removeFile = origRename, origRemove
	})
}

func writePayload(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestQuarantineFallsBackToCopyDelete(t *testing.T) {
	swapSeams(t,
		func(string, string) error { return errInUse },
		os.Remove,
	)
	src := writePayload(t, t.TempDir(), "evil.exe")
	dest := filepath.Join(t.TempDir(), "q", "evil.exe")

	out := quarantineFile(src, dest)
	if out.failed() || out.partial {
		t.Fatalf("outcome = %+v, want clean copy-delete success", out)
	}
	if out.backupPath != dest {
		t.Errorf("backup path = %q, want %q", out.backupPath, dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Errorf("quarantine copy = %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("original still present after copy-delete fallback")
	}
}

func TestQuarantinePartialRenamesOriginal(t *testing.T) {
	// Move and delete both fail; only the in-place rename to the
	// .quarantined suffix goes through.
	swapSeams(t,
		func(old, new string) error {
			if strings.HasSuffix(new, quarantineSuffix) {
				return os.Rename(old, new)
			}
			return errInUse
		},
		func(string) error { return errInUse },
	)
	src := writePayload(t, t.TempDir(), "evil.exe")
	dest := filepath.Join(t.TempDir(), "q", "evil.exe")

	out := quarantineFile(src, dest)
	if out.failed() {
		t.Fatalf("outcome = %+v, want partial success", out)
	}
	if !out.partial {
		t.Error("partial flag not set")
	}
	if out.backupPath != dest {
		t.Errorf("backup path = %q, want %q", out.backupPath, dest)
	}
	if _, err := os.Stat(src + quarantineSuffix); err != nil {
		t.Error("renamed original missing:", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("original path still occupied")
	}
}

func TestQuarantineLockedFileKeepsCopy(t *testing.T) {
	swapSeams(t,
		func(string, string) error { return errInUse },
		func(string) error { return errInUse },
	)
	f := newFixture(t)
	src := writePayload(t, t.TempDir(), "evil.exe")
	id := f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})

	res := f.exec.Execute(context.Background(), id)
	if res.Status != models.StatusFailed {
		t.Fatalf("status = %s, want Failed", res.Status)
	}
	if !strings.Contains(res.Message, "locked, delete after reboot") {
		t.Errorf("message = %q", res.Message)
	}
	// The copy made before the failure stays for manual follow-up.
	dest := filepath.Join(f.caseDir, "files", id+"_evil.exe")
	if _, err := os.Stat(dest); err != nil {
		t.Error("quarantine copy not preserved:", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("locked original unexpectedly gone:", err)
	}
	if len(f.journal.Entries()) != 0 {
		t.Error("failed quarantine must not be journaled")
	}
	item, _ := f.queue.Get(id)
	if item.Status != models.StatusFailed {
		t.Errorf("queue status = %s", item.Status)
	}
}

func TestExecuteAllCountsPartialAsSucceeded(t *testing.T) {
	swapSeams(t,
		func(old, new string) error {
			if strings.HasSuffix(new, quarantineSuffix) {
				return os.Rename(old, new)
			}
			return errInUse
		},
		func(string) error { return errInUse },
	)
	f := newFixture(t)
	f.mock.SetDWord(evilSvcKey, "Start", 2)

	src := writePayload(t, t.TempDir(), "evil.exe")
	f.enqueue(t, models.CleanupItem{Type: models.ItemFile, Name: "evil.exe", OriginalPath: src})
	f.enqueue(t, models.CleanupItem{Type: models.ItemService, Name: "EvilSvc", OriginalPath: evilSvcKey})

	summary := f.exec.ExecuteAll(context.Background())
	if summary.Succeeded != 2 || summary.Failed != 0 || summary.Partial != 1 {
		t.Fatalf("summary = %d/%d/%d (succeeded/failed/partial)",
			summary.Succeeded, summary.Failed, summary.Partial)
	}
	if !summary.Results[0].PartialSuccess {
		t.Error("quarantine result not marked partial")
	}
	if summary.Results[1].PartialSuccess {
		t.Error("service disable wrongly marked partial")
	}
}
