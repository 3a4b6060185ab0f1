//go:build !windows

package winsys

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by every live accessor on non-Windows builds.
// The core still compiles and tests everywhere through the Mock facility.
var ErrUnsupported = errors.New("winsys: live system access requires windows")

type unsupported struct{}

func (unsupported) Values(string) ([]RegistryValue, error)      { return nil, ErrUnsupported }
func (unsupported) StringValue(string, string) (string, error)  { return "", ErrUnsupported }
func (unsupported) DWordValue(string, string) (uint32, error)   { return 0, ErrUnsupported }
func (unsupported) SetDWordValue(string, string, uint32) error  { return ErrUnsupported }
func (unsupported) SubKeys(string) ([]string, error)            { return nil, ErrUnsupported }
func (unsupported) DeleteKey(string) error                      { return ErrUnsupported }

func (unsupported) List() ([]ServiceEntry, error)      { return nil, ErrUnsupported }
func (unsupported) Stop(context.Context, string) error { return ErrUnsupported }

type unsupportedTasks struct{}

func (unsupportedTasks) List(context.Context) ([]TaskEntry, error) { return nil, ErrUnsupported }
func (unsupportedTasks) Disable(context.Context, string) ProcResult {
	return ProcResult{ExitCode: -1, Stderr: ErrUnsupported.Error()}
}
func (unsupportedTasks) Enable(context.Context, string) ProcResult {
	return ProcResult{ExitCode: -1, Stderr: ErrUnsupported.Error()}
}

type unsupportedRegTool struct{}

func (unsupportedRegTool) Export(context.Context, string, string) ProcResult {
	return ProcResult{ExitCode: -1, Stderr: ErrUnsupported.Error()}
}
func (unsupportedRegTool) Import(context.Context, string) ProcResult {
	return ProcResult{ExitCode: -1, Stderr: ErrUnsupported.Error()}
}

// NewFacility returns a facility whose accessors all fail with
// ErrUnsupported.
func NewFacility(time.Duration) *Facility {
	return &Facility{
		Registry: unsupported{},
		Services: unsupported{},
		Tasks:    unsupportedTasks{},
		RegTool:  unsupportedRegTool{},
	}
}
