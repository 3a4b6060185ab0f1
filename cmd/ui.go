package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"hostmedic/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long:  `Opens the interactive terminal UI for reviewing the case timeline, the persistence baseline, and the remediation queue.`,
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, db, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := openSession(ctx, cfg, db)
	if err != nil {
		return err
	}

	app := tui.NewApp(s)
	return app.Run()
}
