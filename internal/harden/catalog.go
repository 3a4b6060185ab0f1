// Package harden detects, applies and rolls back host hardening controls.
// The control catalog is embedded YAML; detection and changes go through the
// system facility and every applied change lands in the harden journal.
package harden

import (
	_ "embed"
	"fmt"

	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// control is one catalog definition. A control is expressed as a single
// registry DWORD with a desired hardened value.
type control struct {
	ID          string `yaml:"id"`
	Category    string `yaml:"category"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Warning     string `yaml:"warning"`
	Recommended string `yaml:"recommended"`

	Key     string `yaml:"key"`
	Value   string `yaml:"value"`
	Desired uint32 `yaml:"desired"`
	// AbsentOK treats a missing value as already compliant (policy values
	// that default to the hardened behavior when unset).
	AbsentOK bool `yaml:"absent_ok"`
	// RollbackDefault is written on rollback when the value did not exist
	// before the control was applied.
	RollbackDefault uint32 `yaml:"rollback_default"`
	// Protective controls are rollback no-ops.
	Protective bool `yaml:"protective"`
}

// loadCatalog parses the embedded catalog.
func loadCatalog() ([]control, error) {
	var controls []control
	if err := yaml.Unmarshal(catalogYAML, &controls); err != nil {
		return nil, fmt.Errorf("parse hardening catalog: %w", err)
	}
	seen := map[string]struct{}{}
	for _, c := range controls {
		if c.ID == "" || c.Key == "" || c.Value == "" {
			return nil, fmt.Errorf("hardening catalog: control %q is incomplete", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("hardening catalog: duplicate id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return controls, nil
}
