package collector

import (
	"context"

	"hostmedic/models"
)

// autorunKeys is the fixed set of Run/RunOnce locations inspected on every
// scan, including the WOW64 view.
var autorunKeys = []struct {
	path  string
	label string
}{
	{`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "HKLM Run"},
	{`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`, "HKLM RunOnce"},
	{`HKLM\SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Run`, "HKLM Run (WOW64)"},
	{`HKCU\SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "HKCU Run"},
	{`HKCU\SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`, "HKCU RunOnce"},
}

func (c *Collector) collectRunKeys(ctx context.Context) ([]models.PersistItem, []string, error) {
	var (
		items []models.PersistItem
		errs  []string
	)
	for _, key := range autorunKeys {
		vals, err := c.fac.Registry.Values(key.path)
		if err != nil {
			// Missing hives are normal (e.g. no WOW64 view); record and move on.
			errs = append(errs, key.label+": "+err.Error())
			continue
		}
		for _, v := range vals {
			exe, risk := ClassifyAutorun(v.Data)
			items = append(items, models.PersistItem{
				Source:    key.label,
				Location:  models.LocationRegistry,
				Name:      v.Name,
				ExePath:   exe,
				RawValue:  v.Data,
				KeyPath:   key.path,
				Risk:      risk,
				Technique: models.TechniqueRunKeys,
			})
		}
	}
	if len(items) == 0 && len(errs) == len(autorunKeys) {
		return nil, nil, errRunKeysUnavailable(errs)
	}
	return items, errs, nil
}

type runKeysError []string

func (e runKeysError) Error() string {
	return "all autorun keys inaccessible: " + e[0]
}

func errRunKeysUnavailable(errs []string) error {
	return runKeysError(errs)
}
