package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/app"
	"expensetracker/internal/core"
	"expensetracker/internal/views"
)

func newListCmd(rt *runtime) *cobra.Command {
	var category, sortOrder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Long: `List every expense, newest first. The list can be narrowed to one
category and sorted by date or amount. The total always covers every expense.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := views.ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Load(ctx); err != nil {
					return err
				}
				a.ExpenseList.SetCategory(core.Category(strings.ToUpper(category)))
				a.ExpenseList.SetSort(order)

				m := a.ExpenseList.Model()
				printExpenses(rt.out, m.Expenses)
				fmt.Fprintf(rt.out, "\n%d shown, total %s\n", len(m.Expenses), core.FormatAmount(m.Total))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show this category, e.g. FOOD")
	cmd.Flags().StringVarP(&sortOrder, "sort", "s", string(views.SortDateDesc), "Sort order: date-desc, date-asc, amount-desc, amount-asc")
	return cmd
}

func newAddCmd(rt *runtime) *cobra.Command {
	var description, amount, category, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Long: `Add an expense. Without --category the backend categorizes it from the
description; without --date it is dated now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			var when time.Time
			if date != "" {
				if when, err = core.ParseDate(date); err != nil {
					return fmt.Errorf("invalid date %q: %w", date, err)
				}
			}

			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				var (
					created core.Expense
					err     error
				)
				if category == "" && when.IsZero() {
					created, err = a.ExpenseList.Submit(ctx, description, value)
				} else {
					if when.IsZero() {
						when = time.Now()
					}
					draft := core.NewDraft(description, value, when)
					if category != "" {
						draft.Category = core.Category(strings.ToUpper(category))
					}
					created, err = a.ExpenseList.SubmitDraft(ctx, draft)
				}
				if err != nil {
					return err
				}
				printExpenses(rt.out, []core.Expense{created})
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "What the money was spent on")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12.50")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category, e.g. FOOD")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD or RFC 3339")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense id %q", args[0])
			}
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				return a.ExpenseList.Delete(ctx, id)
			})
		},
	}
}

func newSearchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search expenses by description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				found, err := a.Gateway.Search(ctx, q)
				if err != nil {
					return err
				}
				printExpenses(rt.out, found)
				return nil
			})
		},
	}
}
