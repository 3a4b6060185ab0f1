package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hostmedic/models"
)

var (
	queueAddType   string
	queueAddName   string
	queueAddPath   string
	queueAddReason string
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Stage and inspect remediation items",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List staged remediation items",
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
		items := s.Queue.Items()
		if len(items) == 0 {
			fmt.Println("Queue is empty.")
			return nil
		}
		fmt.Printf("%-38s %-14s %-16s %-11s %s\n", "ID", "TYPE", "ACTION", "STATUS", "TARGET")
		for _, it := range items {
			fmt.Printf("%-38s %-14s %-16s %-11s %s\n", it.ID, it.Type, it.Action, it.Status, it.OriginalPath)
			if it.ErrorMsg != "" {
				fmt.Printf("  %s\n", warnStyle.Render(it.ErrorMsg))
			}
		}
		return nil
	},
}

var queueAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Stage a remediation item",
	Long: `Stages one item for remediation. The action follows the item type:
File/StartupItem quarantine, Service/ScheduledTask disable, RegistryKey
backup-and-delete.

Examples:
  hostmedic queue add --type File --path 'C:\Users\bob\AppData\Roaming\x.exe'
  hostmedic queue add --type Service --path 'HKLM\SYSTEM\CurrentControlSet\Services\EvilSvc' --name EvilSvc
  hostmedic queue add --type RegistryKey --path 'HKLM\SOFTWARE\Evil'`,
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

		itemType := models.ItemType(queueAddType)
		switch itemType {
		case models.ItemFile, models.ItemService, models.ItemScheduledTask,
			models.ItemRegistryKey, models.ItemStartupItem:
		default:
			return fmt.Errorf("invalid item type %q", queueAddType)
		}
		name := queueAddName
		if name == "" {
			name = queueAddPath
		}
		item := models.CleanupItem{
			Type:         itemType,
			Name:         name,
			OriginalPath: queueAddPath,
			SourceTab:    "CLI",
			Reason:       queueAddReason,
		}
		if !s.Queue.Enqueue(item) {
			fmt.Println(warnStyle.Render("Already queued: " + queueAddPath))
			return nil
		}
		if err := s.SaveQueue(); err != nil {
			return err
		}
		staged := s.Queue.Items()[s.Queue.Len()-1]
		s.Audit.Emit(ctx, string(itemType), "item_queued", string(staged.Severity), queueAddPath, string(staged.Action))
		fmt.Printf("Staged %s (%s) as %s\n", queueAddPath, staged.Action, staged.ID)
		return nil
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a staged item (completed items must be undone first)",
	Args:  cobra.ExactArgs(1),
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
		if err := s.Queue.Dequeue(args[0]); err != nil {
			return err
		}
		return s.SaveQueue()
	},
}

func init() {
	queueAddCmd.Flags().StringVar(&queueAddType, "type", "File",
		"item type: File|Service|ScheduledTask|RegistryKey|StartupItem")
	queueAddCmd.Flags().StringVar(&queueAddPath, "path", "",
		"target path, service key or task name (required)")
	queueAddCmd.Flags().StringVar(&queueAddName, "name", "", "display name (default: path)")
	queueAddCmd.Flags().StringVar(&queueAddReason, "reason", "", "why this item was staged")
	_ = queueAddCmd.MarkFlagRequired("path")
	queueCmd.AddCommand(queueListCmd, queueAddCmd, queueRemoveCmd)
}
