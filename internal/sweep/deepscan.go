package sweep

import (
	"strings"

	"hostmedic/internal/collector"
	"hostmedic/internal/winsys"
	"hostmedic/models"
)

// DeepScanServices inspects every service registry entry for anomalies the
// persistence scan's start-type filter would miss. Only entries that trip a
// rule are emitted.
func (s *Scanner) DeepScanServices() ([]models.SweepEntry, error) {
	services, err := s.fac.Services.List()
	if err != nil {
		return nil, err
	}

	var entries []models.SweepEntry
	for _, svc := range services {
		if svc.ImagePath == "" {
			continue
		}
		exe := collector.ResolveCommandPath(svc.ImagePath)

		category := models.SweepService
		if svc.IsDriver() {
			category = models.SweepDriver
		}
		name := svc.Display
		if name == "" {
			name = svc.Name
		}

		sev, reason := serviceAnomaly(svc, exe, s.FileExists)
		if reason == "" {
			continue
		}
		entries = append(entries, models.SweepEntry{
			Category: category,
			Severity: sev,
			Path:     exe,
			Name:     name,
			Source:   "Services deep-scan",
			Reason:   reason,
		})
	}
	return entries, nil
}

// serviceAnomaly applies the deep-scan rules in severity order and returns
// the first match. An empty reason means the service is unremarkable.
func serviceAnomaly(svc winsys.ServiceEntry, exe string, exists func(string) bool) (models.SeverityLevel, string) {
	if exe == "" || !exists(exe) {
		return models.SeverityHigh, "binary missing on disk"
	}
	foreign := !microsoftPath(exe)
	if svc.IsDriver() && foreign {
		if svc.Start == 0 || svc.Start == 1 {
			return models.SeverityHigh, "boot/system-start non-Microsoft driver"
		}
		return models.SeverityMedium, "non-Microsoft driver"
	}
	if randomLookingName(svc.Name) {
		return models.SeverityMedium, "random-looking service name"
	}
	return models.SeverityLow, ""
}

// microsoftPath reports whether the binary lives in the Windows tree.
func microsoftPath(path string) bool {
	return strings.Contains(strings.ToLower(path), `\windows\`)
}

// randomLookingName flags long, space-free names with the digit-heavy or
// vowel-starved shape of generated identifiers.
func randomLookingName(name string) bool {
	if len(name) < 12 || strings.ContainsRune(name, ' ') {
		return false
	}
	var vowels, digits int
	for _, r := range strings.ToLower(name) {
		switch {
		case strings.ContainsRune("aeiouy", r):
			vowels++
		case r >= '0' && r <= '9':
			digits++
		}
	}
	if digits >= 4 {
		return true
	}
	return vowels*5 < len(name)
}
