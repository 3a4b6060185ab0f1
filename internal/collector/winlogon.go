package collector

import (
	"context"

	"hostmedic/models"
)

const winlogonKey = `HKLM\SOFTWARE\Microsoft\Windows NT\CurrentVersion\Winlogon`

func (c *Collector) collectWinlogon(ctx context.Context) ([]models.PersistItem, []string, error) {
	var (
		items []models.PersistItem
		errs  []string
	)
	for _, valueName := range []string{"Shell", "Userinit"} {
		value, err := c.fac.Registry.StringValue(winlogonKey, valueName)
		if err != nil {
			errs = append(errs, valueName+": "+err.Error())
			continue
		}
		risk := ClassifyWinlogon(valueName, value)
		exe, _ := ClassifyAutorun(value)
		items = append(items, models.PersistItem{
			Source:    "Winlogon",
			Location:  models.LocationWinlogon,
			Name:      valueName,
			ExePath:   exe,
			RawValue:  value,
			KeyPath:   winlogonKey,
			Risk:      risk,
			Technique: models.TechniqueWinlogon,
		})
	}
	if len(items) == 0 && len(errs) > 0 {
		return nil, nil, winlogonError(errs[0])
	}
	return items, errs, nil
}

type winlogonError string

func (e winlogonError) Error() string { return "winlogon key inaccessible: " + string(e) }
