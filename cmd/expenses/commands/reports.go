package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/app"
	"expensetracker/internal/cli"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/store"
)

func newSummaryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show spending totals, categories and the monthly trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				var (
					serverTotal decimal.Decimal
					serverCount int64
				)
				// Independent requests: a failure does not cancel the others.
				var g errgroup.Group
				g.Go(func() error { return a.Store.Load(ctx) })
				g.Go(func() (err error) {
					serverTotal, err = a.Gateway.TotalSpent(ctx)
					return err
				})
				g.Go(func() (err error) {
					serverCount, err = a.Gateway.Count(ctx)
					return err
				})
				if err := g.Wait(); err != nil {
					return err
				}
				log.FromContext(ctx).Debug("Server stats fetched",
					log.FieldOperation, log.OpStats,
					log.FieldCount, serverCount,
					log.FieldAmount, serverTotal.String())

				d := a.Dashboard.Model()
				in := a.Insights.Model()
				fmt.Fprintf(rt.out, "Expenses:        %d (server reports %d)\n", d.ExpenseCount, serverCount)
				fmt.Fprintf(rt.out, "Total:           %s (server reports %s)\n", core.FormatAmount(d.Total), core.FormatAmount(serverTotal))
				fmt.Fprintf(rt.out, "Average expense: %s\n", core.FormatAmount(d.AverageExpense))
				fmt.Fprintf(rt.out, "Monthly average: %s\n", core.FormatAmount(in.MonthlyAverage))
				if in.TopCategory != "" {
					fmt.Fprintf(rt.out, "Top category:    %s\n", in.TopCategory)
				}
				if d.ExpenseCount == 0 {
					return nil
				}

				fmt.Fprintln(rt.out)
				printShares(rt.out, d.Categories)
				fmt.Fprintln(rt.out)
				printTrend(rt.out, d.MonthlyTrend)
				fmt.Fprintln(rt.out, "\nRecent:")
				printExpenses(rt.out, d.Recent)
				return nil
			})
		},
	}
}

func newInsightsCmd(rt *runtime) *cobra.Command {
	var regenerate bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ask the backend for AI insights on your spending",
		Long: `Ask the backend for AI insights on the current expenses. When the AI
service is unavailable, locally computed demo insights are shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Load(ctx); err != nil {
					return err
				}
				generate := a.Insights.Generate
				if regenerate {
					generate = a.Insights.Regenerate
				}
				// On failure text holds the fallback.
				text, _ := generate(ctx)
				fmt.Fprintln(rt.out, text)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "Ignore any cached insights")
	return cmd
}

func newSampleCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Add a handful of sample expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Load(ctx); err != nil {
					return err
				}
				if err := a.Dashboard.LoadSampleData(ctx); err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "%d expenses, total %s\n",
					a.Dashboard.Model().ExpenseCount, core.FormatAmount(a.Dashboard.Model().Total))
				return nil
			})
		},
	}
}

func newChartCmd(rt *runtime) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the monthly trend and category breakdown as PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Load(ctx); err != nil {
					return err
				}
				dir := out
				if dir == "" {
					dir = a.Config.ChartDir
				}
				paths, err := a.RenderCharts(dir)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(rt.out, p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory (defaults to CHART_DIR)")
	return cmd
}

func newExportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export a spending report through EXPORT_BACKEND",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.Load(ctx); err != nil {
					return err
				}
				ref, err := a.Export(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(rt.out, ref)
				return nil
			})
		},
	}
}

func newHealthCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the expenses API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				msg, err := a.Gateway.Health(ctx)
				if err != nil {
					return err
				}
				if msg == "" {
					msg = "OK"
				}
				fmt.Fprintf(rt.out, "%s: %s\n", a.Gateway.BaseURL(), msg)
				return nil
			})
		},
	}
}

func newWatchCmd(rt *runtime) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload expenses periodically and report every change",
		Long: `Reload the expenses every interval until interrupted. Each change is
printed and, when AMQP_URL is set, published as a change event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("invalid interval %v", interval)
			}
			return rt.run(cmd, func(ctx context.Context, a *app.App) error {
				sigCtx, done := cli.GracefulShutdown(a.Logger, shutdownTimeout, nil)

				var last uint64
				sub := a.Store.Subscribe(func(st store.State) {
					if st.Version == last {
						return
					}
					last = st.Version
					fmt.Fprintf(rt.out, "[%s] v%d %s: %d expenses, total %s\n",
						time.Now().Format("15:04:05"), st.Version, st.Change.Kind,
						len(st.Expenses), core.FormatAmount(st.Summary.Total))
				})
				defer sub.Unsubscribe()

				log.FromContext(ctx).Info("Watching expenses",
					log.FieldOperation, log.OpLoad,
					"interval", interval,
					"events", a.EventsEnabled())

				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					// Failures are already notified; keep watching.
					_ = a.Store.Load(ctx)

					select {
					case <-ticker.C:
					case <-ctx.Done():
						return nil
					case <-sigCtx.Done():
						cli.WaitForShutdown(sigCtx, done)
						return nil
					}
				}
			})
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 30*time.Second, "Time between reloads")
	return cmd
}
