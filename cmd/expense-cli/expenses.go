package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"expense-tracker-go/internal/client/categories"
	"expense-tracker-go/internal/ledger"
	"expense-tracker-go/internal/model"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		amount      float64
		category    string
		description string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			when := time.Now()
			if date != "" {
				parsed, err := parseDate(date)
				if err != nil {
					return err
				}
				when = parsed
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			expense, err := a.Coordinator.AddExpense(cmd.Context(), model.ExpenseInput{
				Amount:      amount,
				Category:    category,
				Description: description,
				Date:        when,
			})
			if err != nil {
				return err
			}

			if cats, err := a.Categories.List(cmd.Context()); err == nil {
				names := categories.Names(cats)
				if !containsFold(names, expense.Category) {
					fmt.Fprintln(cmd.ErrOrStderr(), subtleStyle.Render(
						fmt.Sprintf("%q is not a known category (%s).", expense.Category, strings.Join(names, ", "))))
				}
			}

			msg := fmt.Sprintf("Added %.2f to %s (%s).", expense.Amount, expense.Category, expense.ID)
			if expense.IsSynced {
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), warningStyle.Render(msg+" Saved locally, will sync later."))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount, greater than zero")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&description, "description", "", "free text")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD or RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.Coordinator.DeleteExpense(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+args[0]+".")
			return nil
		},
	}
}

type listFlags struct {
	search     string
	categories []string
	from, to   string
	min, max   float64
	timeframe  string
	group      string
	remote     bool
}

type remoteLister interface {
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	ListExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error)
	ListExpensesByCategory(ctx context.Context, category string) ([]model.Expense, error)
}

// fetchRemote narrows on the server where an endpoint exists; the caller
// still applies the full filter to the result.
func fetchRemote(ctx context.Context, client remoteLister, opts ledger.FilterOptions) ([]model.Expense, error) {
	switch {
	case opts.DateRange != nil && !opts.DateRange.Start.IsZero() && !opts.DateRange.End.IsZero():
		return client.ListExpensesInRange(ctx, opts.DateRange.Start, opts.DateRange.End)
	case len(opts.Categories) == 1:
		return client.ListExpensesByCategory(ctx, opts.Categories[0])
	default:
		return client.ListExpenses(ctx)
	}
}

func containsFold(names []string, name string) bool {
	for _, candidate := range names {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}
	return false
}

func (f listFlags) options(cmd *cobra.Command, now time.Time) (ledger.FilterOptions, error) {
	opts := ledger.FilterOptions{Search: f.search, Categories: f.categories}

	if f.timeframe != "" {
		tf, err := ledger.ParseTimeFrame(f.timeframe)
		if err != nil {
			return opts, err
		}
		if tf != ledger.TimeFrameAll {
			r := ledger.PeriodRange(tf, now)
			opts.DateRange = &r
		}
	}

	if f.from != "" || f.to != "" {
		r := ledger.DateRange{}
		if f.from != "" {
			start, err := parseDate(f.from)
			if err != nil {
				return opts, err
			}
			r.Start = start
		}
		if f.to != "" {
			end, err := parseDate(f.to)
			if err != nil {
				return opts, err
			}
			r.End = endOfDay(end)
		}
		if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
			return opts, errors.New("--to is before --from")
		}
		opts.DateRange = &r
	}

	if cmd.Flags().Changed("min") {
		v := f.min
		opts.MinAmount = &v
	}
	if cmd.Flags().Changed("max") {
		v := f.max
		opts.MaxAmount = &v
	}
	return opts, nil
}

func listCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options(cmd, time.Now())
			if err != nil {
				return err
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			source := a.Coordinator.Expenses()
			if flags.remote {
				client := a.Sessions.Client()
				if client == nil {
					return errors.New("sign in to list from the server")
				}
				if source, err = fetchRemote(cmd.Context(), client, opts); err != nil {
					return describeAuthError(err)
				}
			}

			expenses := ledger.Filter(source, opts)
			sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
			colors := colorOf(cmd.Context(), a)
			out := cmd.OutOrStdout()

			var groups map[string][]model.Expense
			switch strings.ToLower(flags.group) {
			case "":
				printExpenses(out, expenses, colors)
				return nil
			case "day":
				groups = ledger.GroupByDay(expenses)
			case "month":
				groups = ledger.GroupByMonth(expenses)
			case "category":
				groups = ledger.GroupByCategory(expenses)
			default:
				return fmt.Errorf("unknown grouping %q: use day, month or category", flags.group)
			}

			for _, key := range ledger.SortedKeys(groups) {
				items := groups[key]
				total := ledger.Totals(items, ledger.TimeFrameAll).TotalAmount
				fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s  (%.2f)", key, total)))
				printExpenses(out, items, colors)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.search, "search", "", "match description or category, case-insensitive")
	cmd.Flags().StringSliceVar(&flags.categories, "category", nil, "only these categories (repeatable)")
	cmd.Flags().StringVar(&flags.from, "from", "", "first day, inclusive")
	cmd.Flags().StringVar(&flags.to, "to", "", "last day, inclusive")
	cmd.Flags().Float64Var(&flags.min, "min", 0, "minimum amount")
	cmd.Flags().Float64Var(&flags.max, "max", 0, "maximum amount")
	cmd.Flags().StringVar(&flags.timeframe, "timeframe", "", "day, week, month, year or all")
	cmd.Flags().StringVar(&flags.group, "group", "", "group by day, month or category")
	cmd.Flags().BoolVar(&flags.remote, "remote", false, "list what the server holds instead of the local copy")
	return cmd
}

func summaryCmd() *cobra.Command {
	var (
		timeframe  string
		fromRemote bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total and per-category breakdown for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := ledger.ParseTimeFrame(timeframe)
			if err != nil {
				return err
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			var summary ledger.Summary
			if fromRemote {
				client := a.Sessions.Client()
				if client == nil {
					return errors.New("sign in to ask the server for a summary")
				}
				if summary, err = client.Summary(cmd.Context(), tf); err != nil {
					return describeAuthError(err)
				}
			} else {
				summary = ledger.Summarize(a.Coordinator.Expenses(), tf, time.Now())
			}

			printSummary(cmd, summary, colorOf(cmd.Context(), a))
			return nil
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "day, week, month, year or all")
	cmd.Flags().BoolVar(&fromRemote, "remote", false, "compute on the server from synced expenses only")
	return cmd
}

func printSummary(cmd *cobra.Command, summary ledger.Summary, colors map[string]string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Total (%s): %.2f", summary.TimeFrame, summary.TotalAmount)))

	names := make([]string, 0, len(summary.CategoryBreakdown))
	for name := range summary.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := summary.CategoryBreakdown[names[i]], summary.CategoryBreakdown[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})

	tw := newTable(out)
	for _, name := range names {
		amount := summary.CategoryBreakdown[name]
		share := 0.0
		if summary.TotalAmount > 0 {
			share = amount / summary.TotalAmount * 100
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.1f%%\n", categoryStyle(colors[name]).Render(name), amount, share)
	}
	_ = tw.Flush()
}

func reportCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly totals for a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if year == 0 {
				year = time.Now().Year()
			}
			totals := ledger.MonthlyTotals(a.Coordinator.Expenses(), year)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Monthly totals %d", year)))
			tw := newTable(out)
			var sum float64
			for i, total := range totals {
				sum += total
				fmt.Fprintf(tw, "%s\t%.2f\n", time.Month(i+1).String()[:3], total)
			}
			fmt.Fprintf(tw, "%s\t%.2f\n", headerStyle.Render("Year"), sum)
			_ = tw.Flush()
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current)")
	return cmd
}
