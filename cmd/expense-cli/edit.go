package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"expense-tracker-go/internal/client/remote"
	"expense-tracker-go/internal/model"
	"github.com/spf13/cobra"
)

type editFlags struct {
	amount      float64
	category    string
	description string
	date        string
}

// update builds the partial body from the flags the user actually set.
func (f editFlags) update(cmd *cobra.Command) (remote.ExpenseUpdate, error) {
	var update remote.ExpenseUpdate
	changed := false

	if cmd.Flags().Changed("amount") {
		amount := model.RoundAmount(f.amount)
		if math.IsNaN(amount) || amount < model.MinAmount || amount > model.MaxAmount {
			return update, model.ErrInvalidAmount
		}
		update.Amount = &amount
		changed = true
	}
	if cmd.Flags().Changed("category") {
		category := strings.TrimSpace(f.category)
		if category == "" {
			return update, model.ErrCategoryRequired
		}
		update.Category = &category
		changed = true
	}
	if cmd.Flags().Changed("description") {
		description := f.description
		update.Description = &description
		changed = true
	}
	if cmd.Flags().Changed("date") {
		when, err := parseDate(f.date)
		if err != nil {
			return update, err
		}
		update.Date = &when
		changed = true
	}

	if !changed {
		return update, errors.New("nothing to change: pass --amount, --category, --description or --date")
	}
	return update, nil
}

func editCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a synced expense on the server",
		Long: `edit updates an expense that already exists on the server and then refreshes
the local copy. Expenses still waiting to sync cannot be edited; delete and
add them again instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := flags.update(cmd)
			if err != nil {
				return err
			}
			if offline {
				return errors.New("edit needs the server; drop --offline")
			}

			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer closeApp(a)

			id := args[0]
			var target *model.Expense
			for _, expense := range a.Coordinator.Expenses() {
				if expense.ID == id {
					found := expense
					target = &found
					break
				}
			}
			switch {
			case target == nil:
				return fmt.Errorf("no expense with id %s", id)
			case target.IsLocal() || !target.IsSynced:
				return fmt.Errorf("expense %s has not synced yet", id)
			}

			client := a.Sessions.Client()
			if client == nil {
				return errors.New("sign in to edit expenses")
			}
			if !a.Coordinator.Online() {
				return errors.New("server unreachable, try again when online")
			}

			updated, err := client.UpdateExpense(cmd.Context(), id, update)
			if err != nil {
				return describeAuthError(err)
			}
			if _, err := a.Coordinator.SyncExpenses(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
				fmt.Sprintf("Updated %s: %.2f %s on %s.", updated.ID, updated.Amount, updated.Category, updated.Date.Format("2006-01-02"))))
			return nil
		},
	}

	cmd.Flags().Float64Var(&flags.amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&flags.category, "category", "", "new category")
	cmd.Flags().StringVar(&flags.description, "description", "", "new description")
	cmd.Flags().StringVar(&flags.date, "date", "", "new date (YYYY-MM-DD or RFC 3339)")
	return cmd
}
