package collector

import (
	"context"

	"hostmedic/models"
)

// Service start types. Manual (3) and Disabled (4) entries are omitted from
// results entirely, not reported OK.
const (
	startBoot      = 0
	startSystem    = 1
	startAutomatic = 2
)

func (c *Collector) collectServices(ctx context.Context) ([]models.PersistItem, []string, error) {
	entries, err := c.fac.Services.List()
	if err != nil {
		return nil, nil, err
	}

	var items []models.PersistItem
	for _, svc := range entries {
		if svc.Start != startBoot && svc.Start != startSystem && svc.Start != startAutomatic {
			continue
		}
		if svc.ImagePath == "" {
			// Service groups and stub keys carry no image; skip.
			continue
		}

		exe, risk := ClassifyService(svc.ImagePath, c.FileExists)

		location := models.LocationService
		technique := models.TechniqueService
		if svc.IsDriver() {
			location = models.LocationDriver
			technique = models.TechniqueDriver
		}

		name := svc.Display
		if name == "" {
			name = svc.Name
		}
		items = append(items, models.PersistItem{
			Source:    "Services",
			Location:  location,
			Name:      name,
			ExePath:   exe,
			RawValue:  svc.ImagePath,
			KeyPath:   svc.KeyPath,
			Risk:      risk,
			Technique: technique,
		})
	}
	return items, nil, nil
}
