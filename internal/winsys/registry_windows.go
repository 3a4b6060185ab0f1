//go:build windows

package winsys

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// winRegistry implements Registry against the live hives via
// golang.org/x/sys/windows/registry.
type winRegistry struct{}

// NewRegistry returns the live registry accessor.
func NewRegistry() Registry {
	return winRegistry{}
}

// splitKeyPath turns "HKLM\SOFTWARE\..." into the root handle plus subpath.
func splitKeyPath(keyPath string) (registry.Key, string, error) {
	root, rest, ok := strings.Cut(keyPath, `\`)
	if !ok {
		rest = ""
	}
	switch strings.ToUpper(root) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return registry.LOCAL_MACHINE, rest, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return registry.CURRENT_USER, rest, nil
	case "HKU", "HKEY_USERS":
		return registry.USERS, rest, nil
	default:
		return 0, "", fmt.Errorf("unsupported registry root %q", root)
	}
}

func (winRegistry) Values(keyPath string) ([]RegistryValue, error) {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return nil, err
	}
	k, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", keyPath, err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing values of %s: %w", keyPath, err)
	}
	out := make([]RegistryValue, 0, len(names))
	for _, name := range names {
		// Non-string values are skipped; autorun data is string-typed.
		if val, _, err := k.GetStringValue(name); err == nil {
			out = append(out, RegistryValue{Name: name, Data: val})
		}
	}
	return out, nil
}

func (winRegistry) StringValue(keyPath, name string) (string, error) {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return "", err
	}
	k, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", keyPath, err)
	}
	defer k.Close()
	val, _, err := k.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("reading %s\\%s: %w", keyPath, name, err)
	}
	return val, nil
}

func (winRegistry) DWordValue(keyPath, name string) (uint32, error) {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return 0, err
	}
	k, err := registry.OpenKey(root, sub, registry.QUERY_VALUE)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", keyPath, err)
	}
	defer k.Close()
	val, _, err := k.GetIntegerValue(name)
	if err != nil {
		return 0, fmt.Errorf("reading %s\\%s: %w", keyPath, name, err)
	}
	return uint32(val), nil
}

func (winRegistry) SetDWordValue(keyPath, name string, value uint32) error {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return err
	}
	k, err := registry.OpenKey(root, sub, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening %s for write: %w", keyPath, err)
	}
	defer k.Close()
	if err := k.SetDWordValue(name, value); err != nil {
		return fmt.Errorf("writing %s\\%s: %w", keyPath, name, err)
	}
	return nil
}

func (winRegistry) SubKeys(keyPath string) ([]string, error) {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return nil, err
	}
	k, err := registry.OpenKey(root, sub, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", keyPath, err)
	}
	defer k.Close()
	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, fmt.Errorf("listing subkeys of %s: %w", keyPath, err)
	}
	return names, nil
}

func (r winRegistry) DeleteKey(keyPath string) error {
	root, sub, err := splitKeyPath(keyPath)
	if err != nil {
		return err
	}
	return deleteKeyRecursive(root, sub)
}

func deleteKeyRecursive(root registry.Key, sub string) error {
	k, err := registry.OpenKey(root, sub, registry.ENUMERATE_SUB_KEYS)
	if err == nil {
		names, _ := k.ReadSubKeyNames(-1)
		k.Close()
		for _, child := range names {
			if err := deleteKeyRecursive(root, sub+`\`+child); err != nil {
				return err
			}
		}
	}
	if err := registry.DeleteKey(root, sub); err != nil {
		return fmt.Errorf("deleting key %s: %w", sub, err)
	}
	return nil
}
