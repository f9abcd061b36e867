package main

import (
	"errors"
	"fmt"

	"expense-tracker-go/internal/client/export"
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, restore and delete local backups",
	}
	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(restoreBackupCmd())
	cmd.AddCommand(deleteBackupCmd())
	return cmd
}

func createBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Write today's backup of expenses and categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if _, err := a.Categories.List(cmd.Context()); err != nil {
				return err
			}
			path, err := a.Backups.Create(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Backup written to "+path))
			return nil
		},
	}
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			backups, err := a.Backups.List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), subtleStyle.Render("No backups in "+a.Backups.Dir()))
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "%s\t%s\t%s\n", headerStyle.Render("NAME"), headerStyle.Render("DATE"), headerStyle.Render("SIZE"))
			for _, b := range backups {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Name, b.Date, b.Size)
			}
			return tw.Flush()
		},
	}
}

func restoreBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name|path>",
		Short: "Replace local expenses and categories with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			restored, err := a.RestoreBackup(cmd.Context(), args[0])
			if errors.Is(err, export.ErrInvalidBackup) {
				return fmt.Errorf("%s is not a valid backup", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf(
				"Restored %d expenses and %d categories from %s.",
				len(restored.Expenses), len(restored.Categories), restored.BackupDate)))
			return nil
		},
	}
}

func deleteBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name|path>",
		Short: "Delete a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.Backups.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+args[0]+".")
			return nil
		},
	}
}
