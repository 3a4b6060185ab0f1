package winsys

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Mock is an in-memory Facility for tests. It never touches the real system;
// registry state lives in maps keyed by upper-cased key path.
type Mock struct {
	mu sync.Mutex

	StringValues map[string]map[string]string // keyPath -> name -> data
	DWordValues  map[string]map[string]uint32
	Subkeys      map[string][]string
	DeletedKeys  []string

	ServiceList []ServiceEntry
	StoppedSvcs []string
	StopErr     error

	TaskList      []TaskEntry
	DisabledTasks []string
	EnabledTasks  []string
	TaskResult    ProcResult

	ExportResult ProcResult
	ImportResult ProcResult
	// ExportWrites controls whether Export materialises the backup file on
	// disk; the executor verifies the file exists before deleting anything.
	ExportWrites bool
	Exports      []string
	Imports      []string
}

// NewMock returns an empty mock facility.
func NewMock() *Mock {
	return &Mock{
		StringValues: map[string]map[string]string{},
		DWordValues:  map[string]map[string]uint32{},
		Subkeys:      map[string][]string{},
		ExportWrites: true,
	}
}

// Facility bundles the mock behind the production interfaces.
func (m *Mock) Facility() *Facility {
	return &Facility{
		Registry: m,
		Services: mockServices{m},
		Tasks:    mockTasks{m},
		RegTool:  mockRegTool{m},
	}
}

func normKey(keyPath string) string { return strings.ToUpper(keyPath) }

// SetString seeds one registry string value.
func (m *Mock) SetString(keyPath, name, data string) {
	k := normKey(keyPath)
	if m.StringValues[k] == nil {
		m.StringValues[k] = map[string]string{}
	}
	m.StringValues[k][name] = data
}

// SetDWord seeds one registry DWORD value.
func (m *Mock) SetDWord(keyPath, name string, v uint32) {
	k := normKey(keyPath)
	if m.DWordValues[k] == nil {
		m.DWordValues[k] = map[string]uint32{}
	}
	m.DWordValues[k][name] = v
}

// --- Registry ---

func (m *Mock) Values(keyPath string) ([]RegistryValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vals, ok := m.StringValues[normKey(keyPath)]
	if !ok {
		return nil, fmt.Errorf("mock: key %s does not exist", keyPath)
	}
	out := make([]RegistryValue, 0, len(vals))
	for name, data := range vals {
		out = append(out, RegistryValue{Name: name, Data: data})
	}
	return out, nil
}

func (m *Mock) StringValue(keyPath, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vals, ok := m.StringValues[normKey(keyPath)]; ok {
		if data, ok := vals[name]; ok {
			return data, nil
		}
	}
	return "", fmt.Errorf("mock: value %s\\%s does not exist", keyPath, name)
}

func (m *Mock) DWordValue(keyPath, name string) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vals, ok := m.DWordValues[normKey(keyPath)]; ok {
		if v, ok := vals[name]; ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("mock: dword %s\\%s does not exist", keyPath, name)
}

func (m *Mock) SetDWordValue(keyPath, name string, value uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := normKey(keyPath)
	if _, ok := m.DWordValues[k]; !ok {
		return fmt.Errorf("mock: key %s does not exist", keyPath)
	}
	m.DWordValues[k][name] = value
	return nil
}

func (m *Mock) SubKeys(keyPath string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys, ok := m.Subkeys[normKey(keyPath)]
	if !ok {
		return nil, fmt.Errorf("mock: key %s does not exist", keyPath)
	}
	return append([]string(nil), keys...), nil
}

func (m *Mock) DeleteKey(keyPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := normKey(keyPath)
	found := false
	if _, ok := m.StringValues[k]; ok {
		delete(m.StringValues, k)
		found = true
	}
	if _, ok := m.DWordValues[k]; ok {
		delete(m.DWordValues, k)
		found = true
	}
	if !found {
		return fmt.Errorf("mock: key %s does not exist", keyPath)
	}
	m.DeletedKeys = append(m.DeletedKeys, keyPath)
	return nil
}

// --- Services ---

type mockServices struct{ m *Mock }

func (s mockServices) List() ([]ServiceEntry, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return append([]ServiceEntry(nil), s.m.ServiceList...), nil
}

func (s mockServices) Stop(_ context.Context, name string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.StoppedSvcs = append(s.m.StoppedSvcs, name)
	return s.m.StopErr
}

// --- Tasks ---

type mockTasks struct{ m *Mock }

func (t mockTasks) List(_ context.Context) ([]TaskEntry, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return append([]TaskEntry(nil), t.m.TaskList...), nil
}

func (t mockTasks) Disable(_ context.Context, name string) ProcResult {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.DisabledTasks = append(t.m.DisabledTasks, name)
	return t.m.TaskResult
}

func (t mockTasks) Enable(_ context.Context, name string) ProcResult {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.EnabledTasks = append(t.m.EnabledTasks, name)
	return t.m.TaskResult
}

// --- RegTool ---

type mockRegTool struct{ m *Mock }

func (r mockRegTool) Export(_ context.Context, keyPath, destFile string) ProcResult {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Exports = append(r.m.Exports, keyPath)
	if r.m.ExportWrites && r.m.ExportResult.ExitCode == 0 {
		_ = os.WriteFile(destFile, []byte("Windows Registry Editor Version 5.00\r\n"), 0o600)
	}
	return r.m.ExportResult
}

func (r mockRegTool) Import(_ context.Context, srcFile string) ProcResult {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Imports = append(r.m.Imports, srcFile)
	return r.m.ImportResult
}
