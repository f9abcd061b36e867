package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"expense-tracker-go/internal/client/export"
	"expense-tracker-go/internal/model"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses to CSV or XLSX",
	}
	cmd.AddCommand(exportFormatCmd("csv", "CSV, to stdout unless --out is given", export.WriteCSV, false))
	cmd.AddCommand(exportFormatCmd("xlsx", "an Excel workbook", export.WriteXLSX, true))
	return cmd
}

func exportFormatCmd(format, what string, write func(io.Writer, []model.Expense) error, needsFile bool) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   format,
		Short: "Export expenses as " + what,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer closeApp(a)

			expenses := a.Coordinator.Expenses()

			if out == "" && !needsFile {
				return write(cmd.OutOrStdout(), expenses)
			}
			if out == "" {
				now := time.Now()
				out = fmt.Sprintf("expenses_%d_%d_%d.%s", now.Year(), int(now.Month()), now.Day(), format)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := write(f, expenses); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render(fmt.Sprintf("Exported %d expenses to %s.", len(expenses), out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}
