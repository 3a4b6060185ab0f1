package collector

import (
	"context"

	"hostmedic/models"
)

const ifeoRoot = `HKLM\SOFTWARE\Microsoft\Windows NT\CurrentVersion\Image File Execution Options`

// collectIFEO reports every image with a Debugger value. An IFEO debugger is
// never silently OK; the classifier's reason tells the operator how bad.
func (c *Collector) collectIFEO(ctx context.Context) ([]models.PersistItem, []string, error) {
	images, err := c.fac.Registry.SubKeys(ifeoRoot)
	if err != nil {
		return nil, nil, err
	}

	var (
		items []models.PersistItem
		errs  []string
	)
	for _, image := range images {
		keyPath := ifeoRoot + `\` + image
		debugger, err := c.fac.Registry.StringValue(keyPath, "Debugger")
		if err != nil {
			// Most IFEO subkeys carry only perf options and no Debugger.
			continue
		}
		if debugger == "" {
			continue
		}
		exe, risk := ClassifyIFEO(debugger, c.FileExists)
		items = append(items, models.PersistItem{
			Source:    "IFEO",
			Location:  models.LocationIFEO,
			Name:      image,
			ExePath:   exe,
			RawValue:  debugger,
			KeyPath:   keyPath,
			Risk:      risk,
			Technique: models.TechniqueIFEO,
		})
	}
	return items, errs, nil
}
