//go:build windows

package winsys

import "time"

// NewFacility wires the live Windows accessors with a shared process timeout.
func NewFacility(procTimeout time.Duration) *Facility {
	return &Facility{
		Registry: NewRegistry(),
		Services: NewServices(procTimeout),
		Tasks:    NewTasks(procTimeout),
		RegTool:  NewRegTool(procTimeout),
	}
}
