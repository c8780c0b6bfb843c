// Package app builds the application context: every service the commands
// use, constructed once, wired explicitly and torn down together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	"expensetracker/internal/config"
	"expensetracker/internal/events"
	"expensetracker/internal/gateway"
	"expensetracker/internal/log"
	"expensetracker/internal/notify"
	"expensetracker/internal/observable"
	"expensetracker/internal/sheets"
	"expensetracker/internal/store"
	"expensetracker/internal/views"
)

const cacheSweepInterval = time.Minute

type App struct {
	Config        *config.Config
	Logger        *log.Logger
	Notifications *notify.Queue
	Gateway       *gateway.Client
	Store         *store.Store
	InsightsCache *cache.Insights
	Caches        *cache.Manager
	Dashboard     *views.Dashboard
	ExpenseList   *views.ExpenseList
	Insights      *views.Insights
	Exporter      sheets.Exporter
	Charts        *charts.Renderer

	relay     *events.Relay
	relaySub  observable.Subscription
	publisher *events.AMQPPublisher
	now       func() time.Time
}

// Option customizes construction, mostly for tests.
type Option func(*buildOptions)

type buildOptions struct {
	httpClient *http.Client
	exporter   sheets.Exporter
	publisher  events.Publisher
	afterFunc  notify.AfterFunc
	now        func() time.Time
}

// WithHTTPClient sets the client the gateway uses.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *buildOptions) { o.httpClient = hc }
}

// WithExporter bypasses EXPORT_BACKEND.
func WithExporter(x sheets.Exporter) Option {
	return func(o *buildOptions) { o.exporter = x }
}

// WithPublisher relays store changes to p instead of dialing AMQP_URL.
func WithPublisher(p events.Publisher) Option {
	return func(o *buildOptions) { o.publisher = p }
}

// WithAfterFunc replaces the notification timers.
func WithAfterFunc(fn notify.AfterFunc) Option {
	return func(o *buildOptions) { o.afterFunc = fn }
}

// WithClock sets the clock used for new expenses, reports and events.
func WithClock(now func() time.Time) Option {
	return func(o *buildOptions) { o.now = now }
}

// New constructs the application. The caller owns the result and must Close
// it. An unreachable broker is logged and leaves events disabled.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app config is nil")
	}
	if logger == nil {
		logger = log.Nop()
	}
	o := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config: cfg,
		Logger: logger.WithComponent(log.ComponentApp),
		now:    o.now,
	}

	queueOpts := []notify.Option{
		notify.WithDefaultDuration(cfg.NotificationDuration),
		notify.WithLogger(logger),
	}
	if o.afterFunc != nil {
		queueOpts = append(queueOpts, notify.WithAfterFunc(o.afterFunc))
	}
	a.Notifications = notify.New(queueOpts...)

	gwOpts := []gateway.Option{
		gateway.WithNotifier(a.Notifications),
		gateway.WithLogger(logger),
		gateway.WithTimeout(cfg.APITimeout),
	}
	if o.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(o.httpClient))
	}
	gw, err := gateway.New(cfg.APIBaseURL, gwOpts...)
	if err != nil {
		a.Notifications.Close()
		return nil, fmt.Errorf("create gateway: %w", err)
	}
	a.Gateway = gw

	a.Store = store.New(gw, logger)

	a.InsightsCache = cache.NewInsights(cfg.InsightsCacheSize, cfg.InsightsCacheTTL, logger)
	a.Caches = cache.NewManager(logger)
	a.Caches.Register(a.InsightsCache)
	a.Caches.StartCleanup(cacheSweepInterval)

	viewOpts := []views.Option{views.WithClock(o.now), views.WithLogger(logger)}
	a.Dashboard = views.NewDashboard(a.Store, a.Notifications, cfg.SampleConcurrency, viewOpts...)
	a.ExpenseList = views.NewExpenseList(a.Store, a.Notifications, viewOpts...)
	a.Insights = views.NewInsights(a.Store, a.Notifications, a.InsightsCache, viewOpts...)

	a.Charts = charts.New(logger)

	exporter := o.exporter
	if exporter == nil {
		exporter, err = NewExporter(ctx, cfg, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	a.Exporter = exporter

	pub := o.publisher
	if pub == nil && cfg.AMQPEnabled() {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			a.Logger.Warn("Change events disabled, broker unavailable",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeConnection)
		} else {
			a.publisher = p
			pub = p
		}
	}
	if pub != nil {
		a.relay = events.NewRelay(pub, events.DefaultBuffer, logger)
		a.relay.Start(ctx)
		a.relaySub = a.relay.Attach(a.Store)
	}

	a.Logger.Debug("Application initialized",
		log.FieldOperation, log.OpStartup,
		"base_url", gw.BaseURL(),
		"events", a.relay != nil)
	return a, nil
}

// Export writes a report of the current collection through the exporter and
// returns its reference.
func (a *App) Export(ctx context.Context) (string, error) {
	report := sheets.NewReport(a.Store.Expenses(), a.now())
	ref, err := a.Exporter.Export(ctx, report)
	if err != nil {
		a.Notifications.Error("Export failed: " + err.Error())
		return "", fmt.Errorf("export report: %w", err)
	}
	a.Notifications.Success("Report exported to " + ref)
	return ref, nil
}

// RenderCharts writes the summary charts into dir.
func (a *App) RenderCharts(dir string) ([]string, error) {
	paths, err := a.Charts.WriteAll(dir, a.Store.Summary())
	if err != nil {
		return paths, fmt.Errorf("render charts: %w", err)
	}
	return paths, nil
}

// EventsEnabled reports whether store changes are relayed.
func (a *App) EventsEnabled() bool {
	return a.relay != nil
}

// Close tears everything down in reverse order. Queued change events are
// flushed before the broker connection closes.
func (a *App) Close() error {
	var errs []error

	if a.relaySub != nil {
		a.relaySub.Unsubscribe()
	}
	if a.relay != nil {
		a.relay.Close()
		if dropped := a.relay.Dropped(); dropped > 0 {
			a.Logger.Warn("Change events dropped", log.FieldCount, dropped)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}

	if a.Insights != nil {
		a.Insights.Close()
	}
	if a.ExpenseList != nil {
		a.ExpenseList.Close()
	}
	if a.Dashboard != nil {
		a.Dashboard.Close()
	}
	if a.Caches != nil {
		a.Caches.Stop()
	}
	a.Notifications.Close()

	a.Logger.Debug("Application closed", log.FieldOperation, log.OpShutdown)
	return errors.Join(errs...)
}
