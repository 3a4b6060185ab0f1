//go:build windows

package winsys

import (
	"context"
	"fmt"
	"time"
)

// winTasks drives schtasks.exe. Task state changes surface the tool's exit
// code and stderr as the error text.
type winTasks struct {
	timeout time.Duration
}

// NewTasks returns the live scheduled-task accessor.
func NewTasks(timeout time.Duration) Tasks {
	return &winTasks{timeout: timeout}
}

func (t *winTasks) List(ctx context.Context) ([]TaskEntry, error) {
	res := runProc(ctx, t.timeout, "schtasks.exe", "/Query", "/FO", "CSV", "/V")
	if !res.Ok() {
		return nil, fmt.Errorf("schtasks query: exit %d: %s", res.ExitCode, res.Stderr)
	}
	return parseTaskCSV(res.Stdout)
}

func (t *winTasks) Disable(ctx context.Context, name string) ProcResult {
	return runProc(ctx, t.timeout, "schtasks.exe", "/Change", "/TN", name, "/DISABLE")
}

func (t *winTasks) Enable(ctx context.Context, name string) ProcResult {
	return runProc(ctx, t.timeout, "schtasks.exe", "/Change", "/TN", name, "/ENABLE")
}
