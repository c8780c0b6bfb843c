package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"expensetracker/internal/app"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
)

const (
	shutdownTimeout = 10 * time.Second
	// LOG_LEVEL or --log-level raise it.
	defaultLogLevel = "warn"
)

// globalFlags override the environment configuration.
type globalFlags struct {
	apiURL   string
	logLevel string
	timeout  time.Duration
}

// runtime builds the application for one command invocation.
type runtime struct {
	flags   globalFlags
	out     io.Writer
	errOut  io.Writer
	appOpts []app.Option
}

// NewRootCmd creates the expenses command tree. Command output goes to out,
// notifications and logs to errOut.
func NewRootCmd(out, errOut io.Writer, opts ...app.Option) *cobra.Command {
	rt := &runtime{out: out, errOut: errOut, appOpts: opts}

	rootCmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expense Tracker - track and analyze your spending",
		Long: `Expense Tracker is a client for the expenses API. It lists, adds and
deletes expenses, summarizes spending by category and month, asks the
backend for AI insights and exports reports and charts.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&rt.flags.apiURL, "api-url", "", "Base URL of the expenses API (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&rt.flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().DurationVar(&rt.flags.timeout, "timeout", 0, "Per-request timeout (overrides API_TIMEOUT)")

	rootCmd.AddCommand(
		newListCmd(rt),
		newAddCmd(rt),
		newDeleteCmd(rt),
		newSummaryCmd(rt),
		newInsightsCmd(rt),
		newSampleCmd(rt),
		newChartCmd(rt),
		newExportCmd(rt),
		newHealthCmd(rt),
		newSearchCmd(rt),
		newWatchCmd(rt),
		newVersionCmd(rt),
	)
	return rootCmd
}

// Execute runs the command tree against the process streams.
func Execute() error {
	rootCmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// config loads the environment configuration with flag overrides applied.
func (rt *runtime) config(logger *log.Logger) (*config.Config, error) {
	return cli.LoadAndValidateConfig(logger, func(c *config.Config) {
		if rt.flags.apiURL != "" {
			c.APIBaseURL = rt.flags.apiURL
		}
		if rt.flags.logLevel != "" {
			c.LogLevel = rt.flags.logLevel
		}
		if rt.flags.timeout > 0 {
			c.APITimeout = rt.flags.timeout
		}
	})
}

// run builds the application, streams its notifications to errOut and
// hands it to fn. The application is closed when fn returns.
func (rt *runtime) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cli.LoadEnvFile()

	level := rt.flags.logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = defaultLogLevel
	}
	logger := cli.SetupLogger(level, rt.errOut)

	cfg, err := rt.config(logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.NewContext(ctx, logger)

	a, err := app.New(ctx, cfg, logger, rt.appOpts...)
	if err != nil {
		return err
	}
	printer := newNotificationPrinter(rt.errOut)
	sub := a.Notifications.Subscribe(printer.print)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Shutdown incomplete", log.FieldError, err)
		}
		sub.Unsubscribe()
	}()

	return fn(ctx, a)
}
