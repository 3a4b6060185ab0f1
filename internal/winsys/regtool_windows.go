//go:build windows

package winsys

import (
	"context"
	"time"
)

// winRegTool exports/imports whole keys through reg.exe. The exported .reg
// file is the backup artifact a key deletion can be rolled back from.
type winRegTool struct {
	timeout time.Duration
}

// NewRegTool returns the live reg.exe wrapper.
func NewRegTool(timeout time.Duration) RegTool {
	return &winRegTool{timeout: timeout}
}

func (r *winRegTool) Export(ctx context.Context, keyPath, destFile string) ProcResult {
	return runProc(ctx, r.timeout, "reg.exe", "export", keyPath, destFile, "/y")
}

func (r *winRegTool) Import(ctx context.Context, srcFile string) ProcResult {
	return runProc(ctx, r.timeout, "reg.exe", "import", srcFile)
}
