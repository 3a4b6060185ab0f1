// Package winsys is the thin system-access layer the core talks through:
// registry read/write, service enumeration and control, scheduled tasks, and
// external process execution. Everything is behind interfaces so the scan and
// remediation engines can be tested without touching a real Windows system.
package winsys

import (
	"context"
	"time"
)

// RegistryValue is one value read from a registry key.
type RegistryValue struct {
	Name string
	Data string
}

// ServiceEntry is one service or driver from the services hive.
type ServiceEntry struct {
	Name      string
	Display   string
	ImagePath string
	// Start is the raw Start DWORD: 0 Boot, 1 System, 2 Automatic,
	// 3 Manual, 4 Disabled.
	Start int
	// Type is the raw Type DWORD; kernel/filesystem drivers are <= 2.
	Type int
	KeyPath string
}

// IsDriver reports whether the entry is a kernel or filesystem driver.
func (s ServiceEntry) IsDriver() bool {
	return s.Type == 1 || s.Type == 2
}

// TaskEntry is one scheduled task.
type TaskEntry struct {
	Name    string // full task path, e.g. \Microsoft\Windows\Defrag\ScheduledDefrag
	Action  string // resolved action executable plus arguments
	State   string // Ready|Running|Disabled|Unknown
}

// ProcResult is the typed outcome of an external process invocation.
type ProcResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Ok reports a clean zero exit without timeout.
func (r ProcResult) Ok() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Registry reads and writes registry values and keys. Key paths use the
// "HKLM\..." / "HKCU\..." prefix form.
type Registry interface {
	// Values lists all string values of a key. A missing key is an error.
	Values(keyPath string) ([]RegistryValue, error)
	// StringValue reads one named string value.
	StringValue(keyPath, name string) (string, error)
	// DWordValue reads one named DWORD value.
	DWordValue(keyPath, name string) (uint32, error)
	// SetDWordValue writes one named DWORD value.
	SetDWordValue(keyPath, name string, value uint32) error
	// SubKeys lists immediate subkey names.
	SubKeys(keyPath string) ([]string, error)
	// DeleteKey removes a key and its values recursively.
	DeleteKey(keyPath string) error
}

// Services enumerates and controls services and drivers.
type Services interface {
	// List returns every entry under the services hive.
	List() ([]ServiceEntry, error)
	// Stop stops a running service best-effort.
	Stop(ctx context.Context, name string) error
}

// Tasks enumerates and controls scheduled tasks.
type Tasks interface {
	// List returns all scheduled tasks.
	List(ctx context.Context) ([]TaskEntry, error)
	// Disable disables a task by its full name.
	Disable(ctx context.Context, name string) ProcResult
	// Enable re-enables a task by its full name.
	Enable(ctx context.Context, name string) ProcResult
}

// RegTool exports and imports whole registry keys through reg.exe, producing
// .reg backup files that survive a key deletion.
type RegTool interface {
	// Export writes keyPath to destFile. The caller must verify the file
	// exists before relying on it.
	Export(ctx context.Context, keyPath, destFile string) ProcResult
	// Import replays a previously exported .reg file.
	Import(ctx context.Context, srcFile string) ProcResult
}

// Facility bundles the full system-access surface handed to the core.
type Facility struct {
	Registry Registry
	Services Services
	Tasks    Tasks
	RegTool  RegTool
}
