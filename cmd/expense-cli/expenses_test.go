package main

import (
	"context"
	"testing"
	"time"

	"expense-tracker-go/internal/ledger"
	"expense-tracker-go/internal/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), got)

	got, err = parseDate("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))

	_, err = parseDate("03/01/2024")
	require.Error(t, err)
}

func TestListFlagsOptions(t *testing.T) {
	cmd := listCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--from", "2024-03-01", "--to", "2024-03-31", "--min", "0", "--category", "Food", "--category", "Health"}))

	var flags listFlags
	flags.from = "2024-03-01"
	flags.to = "2024-03-31"
	flags.categories = []string{"Food", "Health"}

	opts, err := flags.options(cmd, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"Food", "Health"}, opts.Categories)
	require.NotNil(t, opts.DateRange)
	require.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.Local), opts.DateRange.End)
	require.NotNil(t, opts.MinAmount)
	require.Zero(t, *opts.MinAmount)
	require.Nil(t, opts.MaxAmount)
}

func TestListFlagsRejectInvertedRange(t *testing.T) {
	flags := listFlags{from: "2024-03-31", to: "2024-03-01"}
	_, err := flags.options(&cobra.Command{}, time.Now())
	require.Error(t, err)
}

func TestListFlagsTimeframe(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	flags := listFlags{timeframe: "month"}

	opts, err := flags.options(&cobra.Command{}, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), opts.DateRange.Start)

	flags.timeframe = "fortnight"
	_, err = flags.options(&cobra.Command{}, now)
	require.Error(t, err)
}

type recordingLister struct {
	calls []string
}

func (l *recordingLister) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	l.calls = append(l.calls, "all")
	return nil, nil
}

func (l *recordingLister) ListExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	l.calls = append(l.calls, "range "+start.Format("2006-01-02")+" "+end.Format("2006-01-02"))
	return nil, nil
}

func (l *recordingLister) ListExpensesByCategory(ctx context.Context, category string) ([]model.Expense, error) {
	l.calls = append(l.calls, "category "+category)
	return nil, nil
}

func TestFetchRemotePicksEndpoint(t *testing.T) {
	ctx := context.Background()
	l := &recordingLister{}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := fetchRemote(ctx, l, ledger.FilterOptions{DateRange: &ledger.DateRange{Start: start, End: end}, Categories: []string{"Food"}})
	require.NoError(t, err)
	_, err = fetchRemote(ctx, l, ledger.FilterOptions{Categories: []string{"Food"}})
	require.NoError(t, err)
	_, err = fetchRemote(ctx, l, ledger.FilterOptions{Categories: []string{"Food", "Health"}})
	require.NoError(t, err)
	_, err = fetchRemote(ctx, l, ledger.FilterOptions{DateRange: &ledger.DateRange{Start: start}})
	require.NoError(t, err)

	require.Equal(t, []string{"range 2024-03-01 2024-03-31", "category Food", "all", "all"}, l.calls)
}

func TestEditFlagsUpdate(t *testing.T) {
	cmd := editCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--amount", "12.345", "--category", " Food "}))

	flags := editFlags{amount: 12.345, category: " Food "}
	update, err := flags.update(cmd)
	require.NoError(t, err)
	require.Equal(t, 12.35, *update.Amount)
	require.Equal(t, "Food", *update.Category)
	require.Nil(t, update.Description)
	require.Nil(t, update.Date)

	_, err = editFlags{}.update(editCmd())
	require.Error(t, err)

	tiny := editCmd()
	require.NoError(t, tiny.Flags().Parse([]string{"--amount", "0.001"}))
	_, err = editFlags{amount: 0.001}.update(tiny)
	require.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestContainsFold(t *testing.T) {
	require.True(t, containsFold([]string{"Food", "Health"}, "food"))
	require.False(t, containsFold([]string{"Food"}, "Fuel"))
}
