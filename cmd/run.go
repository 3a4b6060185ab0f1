package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"hostmedic/internal/casefile"
	"hostmedic/internal/notify"
	"hostmedic/models"
)

var (
	runItemID string
	runYes    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute staged remediations",
	Long: `Executes one staged item (--id) or every pending item in queue order.
Each completed action is journaled first so it can be undone later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		dispatcher := notify.NewDispatcher(cfg.Notify)

		if runItemID != "" {
			res := s.Executor.Execute(ctx, runItemID)
			if err := s.SaveQueue(); err != nil {
				return err
			}
			printActionResult(ctx, s, dispatcher, res)
			if res.Status == models.StatusFailed {
				return fmt.Errorf("remediation failed: %s", res.Message)
			}
			return nil
		}

		pending := s.Queue.Pending()
		if len(pending) == 0 {
			fmt.Println("Nothing pending.")
			return nil
		}
		if !runYes {
			var confirmed bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Execute %d pending remediation(s)?", len(pending))).
						Description("Files are quarantined, services and tasks disabled, registry keys deleted after backup").
						Value(&confirmed),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Aborted.")
				return nil
			}
		}

		summary := s.Executor.ExecuteAll(ctx)
		if err := s.SaveQueue(); err != nil {
			return err
		}
		for _, res := range summary.Results {
			printActionResult(ctx, s, dispatcher, res)
		}
		line := fmt.Sprintf("%d succeeded, %d failed", summary.Succeeded, summary.Failed)
		if summary.Partial > 0 {
			line += fmt.Sprintf(" (%d partial)", summary.Partial)
		}
		if summary.Failed > 0 {
			fmt.Println(warnStyle.Render(line))
		} else {
			fmt.Println(successStyle.Render(line))
		}
		return nil
	},
}

func printActionResult(ctx context.Context, s *casefile.Session, d *notify.Dispatcher, res models.ActionResult) {
	item, _ := s.Queue.Get(res.ItemID)
	switch res.Status {
	case models.StatusCompleted:
		mark := "done"
		if res.PartialSuccess {
			mark = "partial"
		}
		fmt.Printf("%s  %s %s\n", successStyle.Render(mark), item.Action, item.OriginalPath)
		s.Audit.Emit(ctx, string(item.Type), "item_executed", string(item.Severity), item.OriginalPath, res.Message)
		d.Notify(ctx, notify.Event{
			Type:     "item_executed",
			Title:    fmt.Sprintf("Remediation executed: %s", item.Name),
			Body:     fmt.Sprintf("%s on %s", item.Action, item.OriginalPath),
			Severity: string(item.Severity),
			CaseID:   s.Case.ID,
			Target:   item.OriginalPath,
		})
	default:
		fmt.Printf("%s  %s %s: %s\n", warnStyle.Render("failed"), item.Action, item.OriginalPath, res.Message)
		s.Audit.Emit(ctx, string(item.Type), "item_failed", string(item.Severity), item.OriginalPath, res.Message)
	}
	if res.JournalWarning != "" {
		fmt.Println(warnStyle.Render("  warning: " + res.JournalWarning))
	}
}

func init() {
	runCmd.Flags().StringVar(&runItemID, "id", "", "execute a single staged item by id")
	runCmd.Flags().BoolVar(&runYes, "yes", false, "skip the confirmation prompt")
}
