package remediation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// quarantineSuffix marks an original that could not be deleted after its
// content was copied to quarantine. The rename neutralises autostart
// references to the exact path.
const quarantineSuffix = ".quarantined"

// renameFile and removeFile are injectable for tests; locked-file and
// in-use failures cannot be produced portably with the real os calls.
var (
	renameFile = os.Rename
	removeFile = os.Remove
)

// quarantineOutcome reports how far down the fallback chain a quarantine got.
type quarantineOutcome struct {
	backupPath string
	partial    bool
	errMsg     string
}

func (o quarantineOutcome) failed() bool { return o.errMsg != "" }

// quarantineFile moves a file into the per-case quarantine directory. The
// chain degrades gracefully: atomic move, then copy-and-delete, then
// copy-and-rename (partial success), then failure with the copy preserved
// for manual follow-up.
func quarantineFile(originalPath, destPath string) quarantineOutcome {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return quarantineOutcome{errMsg: "cannot create quarantine directory: " + err.Error()}
	}

	if err := renameFile(originalPath, destPath); err == nil {
		return quarantineOutcome{backupPath: destPath}
	}

	if err := copyFile(originalPath, destPath); err != nil {
		return quarantineOutcome{errMsg: "file may be in use or protected: " + err.Error()}
	}

	if err := removeFile(originalPath); err == nil {
		return quarantineOutcome{backupPath: destPath}
	}

	if err := renameFile(originalPath, originalPath+quarantineSuffix); err == nil {
		return quarantineOutcome{backupPath: destPath, partial: true}
	}

	// The copy in quarantine stays valid either way.
	return quarantineOutcome{
		backupPath: destPath,
		errMsg:     "file is locked, delete after reboot (a quarantine copy was preserved)",
	}
}

// restoreQuarantinedFile moves a quarantine copy back to its original path.
func restoreQuarantinedFile(backupPath, originalPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("quarantine copy missing, cannot restore: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(originalPath), 0o755); err != nil {
		return fmt.Errorf("cannot recreate original directory: %w", err)
	}
	// A leftover renamed original would shadow the restore; clear it first.
	_ = os.Remove(originalPath + quarantineSuffix)
	if err := os.Rename(backupPath, originalPath); err == nil {
		return nil
	}
	if err := copyFile(backupPath, originalPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	_ = os.Remove(backupPath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
