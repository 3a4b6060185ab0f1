package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hostmedic/internal/notify"
	"hostmedic/models"
)

var (
	undoEntryID string
	undoAll     bool
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Roll back the last remediation, a specific journal entry, or everything",
	Long: `Reverses a completed remediation using its journal entry: quarantined
files are restored, service start values and tasks re-enabled, deleted
registry keys re-imported from their .reg backup. Without --entry the
most recent not-yet-undone action is reversed; --all unwinds every
remaining action, newest first.`,
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

		if undoAll {
			summary := s.Executor.UndoAll(ctx)
			if err := s.SaveQueue(); err != nil {
				return err
			}
			if len(summary.Results) == 0 {
				fmt.Println("Nothing to undo.")
				return nil
			}
			for _, res := range summary.Results {
				if res.Status == models.StatusUndone {
					fmt.Println(successStyle.Render("Undone item " + res.ItemID))
					s.Audit.Emit(ctx, "journal", "item_undone", "", res.ItemID, "")
				} else {
					fmt.Println(warnStyle.Render("failed  " + res.ItemID + ": " + res.Message))
					s.Audit.Emit(ctx, "journal", "undo_failed", "", res.ItemID, res.Message)
				}
				if res.JournalWarning != "" {
					fmt.Println(warnStyle.Render("  warning: " + res.JournalWarning))
				}
			}
			line := fmt.Sprintf("%d undone, %d failed", summary.Succeeded, summary.Failed)
			if summary.Failed > 0 {
				fmt.Println(warnStyle.Render(line))
				return fmt.Errorf("%d undo(s) failed, failed entries stay retryable", summary.Failed)
			}
			fmt.Println(successStyle.Render(line))
			notify.NewDispatcher(cfg.Notify).Notify(ctx, notify.Event{
				Type:   "case_undone",
				Title:  "All remediations rolled back",
				Body:   fmt.Sprintf("%d action(s) restored to their prior state", summary.Succeeded),
				CaseID: s.Case.ID,
			})
			return nil
		}

		var res models.ActionResult
		if undoEntryID != "" {
			res = s.Executor.Undo(ctx, undoEntryID)
		} else {
			var ok bool
			res, ok = s.Executor.UndoLast(ctx)
			if !ok {
				fmt.Println("Nothing to undo.")
				return nil
			}
		}
		if err := s.SaveQueue(); err != nil {
			return err
		}

		if res.Status != models.StatusUndone {
			s.Audit.Emit(ctx, "journal", "undo_failed", "", res.ItemID, res.Message)
			return fmt.Errorf("undo failed: %s", res.Message)
		}
		fmt.Println(successStyle.Render("Undone item " + res.ItemID))
		if res.JournalWarning != "" {
			fmt.Println(warnStyle.Render("  warning: " + res.JournalWarning))
		}
		s.Audit.Emit(ctx, "journal", "item_undone", "", res.ItemID, "")
		notify.NewDispatcher(cfg.Notify).Notify(ctx, notify.Event{
			Type:   "item_undone",
			Title:  "Remediation rolled back",
			Body:   "Item " + res.ItemID + " restored to its prior state",
			CaseID: s.Case.ID,
			Target: res.ItemID,
		})
		return nil
	},
}

func init() {
	undoCmd.Flags().StringVar(&undoEntryID, "entry", "", "journal entry id to roll back")
	undoCmd.Flags().BoolVar(&undoAll, "all", false, "roll back every not-yet-undone action, newest first")
}
