package collector

import (
	"context"
	"strings"

	"hostmedic/models"
)

func (c *Collector) collectTasks(ctx context.Context) ([]models.PersistItem, []string, error) {
	tasks, err := c.fac.Tasks.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	var items []models.PersistItem
	for _, task := range tasks {
		if strings.EqualFold(task.State, "Disabled") {
			continue
		}
		exe, risk := ClassifyTask(task.Name, task.Action, c.FileExists)
		items = append(items, models.PersistItem{
			Source:    "Scheduled Tasks",
			Location:  models.LocationScheduledTask,
			Name:      task.Name,
			ExePath:   exe,
			RawValue:  task.Action,
			KeyPath:   task.Name,
			Risk:      risk,
			Technique: models.TechniqueScheduledTask,
		})
	}
	return items, nil, nil
}
