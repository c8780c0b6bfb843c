package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/gateway/gatewaytest"
	"expensetracker/internal/notify"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/store"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

type noTimer struct{}

func (noTimer) Stop() bool { return false }

func testConfig(baseURL string) *config.Config {
	cfg := config.Load()
	cfg.APIBaseURL = baseURL
	cfg.AMQPURL = ""
	cfg.ExportBackend = config.ExportMemory
	return cfg
}

func newTestApp(t *testing.T, srv *gatewaytest.Server, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return fixedNow }),
		WithAfterFunc(func(time.Duration, func()) notify.Timer { return noTimer{} }),
	}, opts...)
	a, err := New(context.Background(), testConfig(srv.URL), nil, opts...)
	require.NoError(t, err)
	return a
}

func messages(q *notify.Queue) []string {
	var out []string
	for _, n := range q.List() {
		out = append(out, n.Message)
	}
	return out
}

func TestApp_EndToEnd(t *testing.T) {
	srv := gatewaytest.NewServer(
		core.Expense{Description: "Lunch", Amount: decimal.RequireFromString("12.50"), Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Category: core.CategoryFood},
	)
	defer srv.Close()

	pub := &recordingPublisher{}
	x := memory.New()
	a := newTestApp(t, srv, WithPublisher(pub), WithExporter(x))
	ctx := context.Background()

	require.True(t, a.EventsEnabled())
	require.NoError(t, a.Store.Load(ctx))
	assert.Equal(t, 1, a.Dashboard.Model().ExpenseCount)

	added, err := a.ExpenseList.Submit(ctx, "Coffee", decimal.RequireFromString("3"))
	require.NoError(t, err)
	assert.Equal(t, core.CategoryOther, added.Category)
	assert.True(t, added.Date.Equal(fixedNow))
	assert.Len(t, srv.Expenses(), 2)

	ref, err := a.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)
	require.Len(t, x.Reports(), 1)
	assert.Equal(t, "15.5", x.Reports()[0].Summary.Total.String())

	paths, err := a.RenderCharts(filepath.Join(t.TempDir(), "charts"))
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	require.NoError(t, a.Close())
	assert.Equal(t, []string{string(store.ChangeLoaded), string(store.ChangeAdded)}, pub.kinds())
	assert.Contains(t, messages(a.Notifications), "Expense added successfully!")
	assert.Contains(t, messages(a.Notifications), "Report exported to mem:1")
}

func TestApp_GatewayFailureNotifies(t *testing.T) {
	srv := gatewaytest.NewServer()
	defer srv.Close()
	srv.SetFailing(true)

	a := newTestApp(t, srv)
	defer a.Close()

	err := a.Store.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"Server error: 500 - Internal server error"}, messages(a.Notifications))
	assert.Equal(t, uint64(0), a.Store.Snapshot().Version)
}

func TestApp_SampleDataFailureNotifiesOnce(t *testing.T) {
	srv := gatewaytest.NewServer()
	defer srv.Close()
	a := newTestApp(t, srv)
	defer a.Close()

	srv.FailNext(1)
	err := a.Dashboard.LoadSampleData(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{
		"Server error: 500 - Internal server error",
		"Failed to load sample data",
	}, messages(a.Notifications))
	assert.Len(t, srv.Expenses(), 4, "the other adds still complete")
}

func TestApp_InsightsCachedPerVersion(t *testing.T) {
	srv := gatewaytest.NewServer()
	defer srv.Close()
	srv.SetInsights("first")

	a := newTestApp(t, srv)
	defer a.Close()
	ctx := context.Background()
	require.NoError(t, a.Store.Load(ctx))

	text, err := a.Insights.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	srv.SetInsights("second")
	text, err = a.Insights.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", text, "unchanged collection answers from the cache")

	text, err = a.Insights.Regenerate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
	assert.Equal(t, 1, a.InsightsCache.Size())
}

func TestApp_NoEventsWithoutBroker(t *testing.T) {
	srv := gatewaytest.NewServer()
	defer srv.Close()

	a := newTestApp(t, srv)
	assert.False(t, a.EventsEnabled())
	assert.NoError(t, a.Close())
}

func TestNew_InvalidBaseURL(t *testing.T) {
	cfg := testConfig("ftp://nowhere")
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)

	_, err = New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestNewExporter(t *testing.T) {
	cfg := testConfig("http://localhost:8080")

	x, err := NewExporter(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Exporter{}, x)

	cfg.ExportBackend = "ftp"
	_, err = NewExporter(context.Background(), cfg, nil)
	assert.Error(t, err)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	cfg.ExportBackend = config.ExportSheets
	cfg.GoogleSpreadsheetID = "sheet"
	_, err = NewExporter(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "Google Sheets exporter")
}
