//go:build windows

package winsys

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/windows/registry"
)

const servicesHive = `SYSTEM\CurrentControlSet\Services`

// winServices enumerates the services hive directly and stops services
// through sc.exe with a bounded wait.
type winServices struct {
	timeout time.Duration
}

// NewServices returns the live service accessor.
func NewServices(timeout time.Duration) Services {
	return &winServices{timeout: timeout}
}

func (s *winServices) List() ([]ServiceEntry, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, servicesHive, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("opening services hive: %w", err)
	}
	defer k.Close()

	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	out := make([]ServiceEntry, 0, len(names))
	for _, name := range names {
		sk, err := registry.OpenKey(registry.LOCAL_MACHINE, servicesHive+`\`+name, registry.QUERY_VALUE)
		if err != nil {
			// Per-key access failures reduce coverage but never abort.
			continue
		}
		entry := ServiceEntry{
			Name:    name,
			KeyPath: `HKLM\` + servicesHive + `\` + name,
			Start:   -1,
		}
		if v, _, err := sk.GetStringValue("DisplayName"); err == nil {
			entry.Display = v
		}
		if v, _, err := sk.GetStringValue("ImagePath"); err == nil {
			entry.ImagePath = v
		}
		if v, _, err := sk.GetIntegerValue("Start"); err == nil {
			entry.Start = int(v)
		}
		if v, _, err := sk.GetIntegerValue("Type"); err == nil {
			entry.Type = int(v)
		}
		sk.Close()
		out = append(out, entry)
	}
	return out, nil
}

func (s *winServices) Stop(ctx context.Context, name string) error {
	res := runProc(ctx, s.timeout, "sc.exe", "stop", name)
	if !res.Ok() {
		return fmt.Errorf("sc stop %s: exit %d: %s", name, res.ExitCode, res.Stderr)
	}
	return nil
}
