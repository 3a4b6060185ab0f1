package collector

import (
	"context"
	"os"
	"path/filepath"

	"hostmedic/models"
)

const startupSuffix = `AppData\Roaming\Microsoft\Windows\Start Menu\Programs\Startup`

// startupFolders lists every startup folder to walk: one per discoverable
// user profile plus the machine-wide ProgramData folder.
func (c *Collector) startupFolders() []struct{ dir, label string } {
	var out []struct{ dir, label string }
	if entries, err := os.ReadDir(c.ProfilesRoot); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			out = append(out, struct{ dir, label string }{
				dir:   filepath.Join(c.ProfilesRoot, e.Name(), startupSuffix),
				label: "Startup (" + e.Name() + ")",
			})
		}
	}
	out = append(out, struct{ dir, label string }{
		dir:   filepath.Join(c.ProgramData, `Microsoft\Windows\Start Menu\Programs\StartUp`),
		label: "Startup (All Users)",
	})
	return out
}

func (c *Collector) collectStartupFolders(ctx context.Context) ([]models.PersistItem, []string, error) {
	var (
		items []models.PersistItem
		errs  []string
	)
	for _, folder := range c.startupFolders() {
		entries, err := os.ReadDir(folder.dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, folder.label+": "+err.Error())
			}
			continue
		}
		for _, e := range entries {
			if e.IsDir() || e.Name() == "desktop.ini" {
				continue
			}
			full := filepath.Join(folder.dir, e.Name())
			exe, risk := ClassifyStartupEntry(full)
			item := models.PersistItem{
				Source:    folder.label,
				Location:  models.LocationStartupFolder,
				Name:      e.Name(),
				ExePath:   exe,
				KeyPath:   folder.dir,
				Risk:      risk,
				Technique: models.TechniqueStartupFolder,
			}
			if info, err := e.Info(); err == nil {
				mt := info.ModTime().UTC()
				item.Modified = &mt
			}
			items = append(items, item)
		}
	}
	return items, errs, nil
}
