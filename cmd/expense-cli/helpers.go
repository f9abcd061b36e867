package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"expense-tracker-go/internal/client/app"
	"expense-tracker-go/internal/client/sync"
	"expense-tracker-go/internal/model"
	"github.com/spf13/cobra"
)

// openApp opens the local database. With connect set, and unless --offline
// was given, the server is probed once, which syncs on success.
func openApp(cmd *cobra.Command, connect bool) (*app.App, error) {
	a, err := app.Open(cmd.Context(), clientCfg, cliLog)
	if err != nil {
		return nil, err
	}
	if connect && !offline {
		if !a.Connect(cmd.Context()) {
			fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("Server unreachable, working offline."))
		}
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		cliLog.Error("cli: close store failed", "err", err)
	}
}

// parseDate accepts YYYY-MM-DD (local midnight) or RFC 3339.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func colorOf(ctx context.Context, a *app.App) map[string]string {
	colors := make(map[string]string)
	cats, err := a.Categories.List(ctx)
	if err != nil {
		return colors
	}
	for _, c := range cats {
		colors[c.Name] = c.Color
	}
	return colors
}

func printExpenses(w io.Writer, expenses []model.Expense, colors map[string]string) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No expenses."))
		return
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"), headerStyle.Render("DATE"), headerStyle.Render("CATEGORY"),
		headerStyle.Render("AMOUNT"), headerStyle.Render("DESCRIPTION"), headerStyle.Render("SYNC"))
	for _, e := range expenses {
		state := successStyle.Render("synced")
		if !e.IsSynced {
			state = warningStyle.Render("pending")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			e.ID, e.Date.Format("Jan 2, 2006"), categoryStyle(colors[e.Category]).Render(e.Category),
			e.Amount, e.Description, state)
	}
	_ = tw.Flush()
}

func printReport(w io.Writer, report sync.Report) {
	if report.Skipped {
		fmt.Fprintln(w, subtleStyle.Render("Sync skipped: offline or not signed in."))
		return
	}

	style := successStyle
	if report.Status != sync.BatchStatusSuccess {
		style = warningStyle
	}
	fmt.Fprintln(w, style.Render(fmt.Sprintf("Sync %s: %d pushed, %d failed, %d discarded.",
		report.Status, report.Summary.Applied, report.Summary.Failed, report.Summary.Discarded)))
	if !report.Pulled {
		fmt.Fprintln(w, warningStyle.Render("Could not refresh expenses from the server."))
	}
	for _, result := range report.Results {
		if result.Status == sync.ResultStatusFailed {
			fmt.Fprintf(w, "  %s: %s\n", result.LocalID, result.Error)
		}
	}
}
