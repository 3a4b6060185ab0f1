package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"hostmedic/internal/casefile"
	"hostmedic/internal/config"
	"hostmedic/internal/database"
	"hostmedic/internal/winsys"
)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("42")).Bold(true)

var warnStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("214")).Bold(true)

var dimStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245"))

// openEnv loads config and opens the migrated case database. Callers own
// closing the returned DB.
func openEnv(ctx context.Context) (*config.Config, database.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return cfg, db, nil
}

// openSession resolves the working case (--case flag, falling back to the
// most recent open case) and assembles its session.
func openSession(ctx context.Context, cfg *config.Config, db database.DB) (*casefile.Session, error) {
	id := caseID
	if id == "" {
		cases, err := database.ListCases(ctx, db)
		if err != nil {
			return nil, err
		}
		for _, c := range cases {
			if c.Status == "open" {
				id = c.ID
				break
			}
		}
		if id == "" {
			return nil, fmt.Errorf("no open case; run 'hostmedic case create' first")
		}
	}
	return casefile.Open(ctx, db, newFacility(cfg), cfg.Case.Root, id)
}

// newFacility builds the live system-access facility with the configured
// external-process timeout.
func newFacility(cfg *config.Config) *winsys.Facility {
	timeout := time.Duration(cfg.Exec.ProcessTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return winsys.NewFacility(timeout)
}

// renderStructured prints v as json or yaml. Table output is handled by the
// individual commands.
func renderStructured(v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
