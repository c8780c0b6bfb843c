// Package charts renders expense summaries as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"expensetracker/internal/aggregate"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// File names written by WriteAll.
const (
	TrendFile    = "monthly-trend.png"
	CategoryFile = "category-breakdown.png"
)

// ErrNoData is returned when a summary has nothing to plot.
var ErrNoData = errors.New("no expenses to chart")

type Renderer struct {
	width  int
	height int
	logger *log.Logger
}

func New(logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Renderer{
		width:  1200,
		height: 600,
		logger: logger.WithComponent(log.ComponentCharts),
	}
}

func background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   50,
			Right:  50,
			Bottom: 50,
		},
		FillColor: chart.ColorWhite,
	}
}

// MonthlyTrend draws one bar per month of the summary's trend.
func (r *Renderer) MonthlyTrend(s core.Summary) ([]byte, error) {
	if len(s.MonthlyTrend) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(s.MonthlyTrend))
	maxValue := 0.0
	for _, m := range s.MonthlyTrend {
		v := m.Amount.InexactFloat64()
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{
			Label: m.Month,
			Value: v,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(180),
			},
		})
	}
	if maxValue == 0 {
		maxValue = 1
	}

	graph := chart.BarChart{
		Title: "Monthly spending",
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:      r.width,
		Height:     r.height,
		BarWidth:   60,
		Background: background(),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render monthly trend: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryBreakdown draws a pie of category shares. Categories with a zero
// amount are left out.
func (r *Renderer) CategoryBreakdown(s core.Summary) ([]byte, error) {
	shares := aggregate.CategoryPercentages(s.CategoryBreakdown, s.Total)

	values := make([]chart.Value, 0, len(shares))
	for _, sh := range shares {
		if !sh.Amount.IsPositive() {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%d%%)", sh.Category, sh.Amount.StringFixed(2), sh.Percentage),
			Value: sh.Amount.InexactFloat64(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:      "Spending by category",
		Width:      r.height,
		Height:     r.height,
		Values:     values,
		Background: background(),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category breakdown: %w", err)
	}
	return buffer.Bytes(), nil
}

// WriteAll renders both charts into dir, creating it if needed, and returns
// the written paths.
func (r *Renderer) WriteAll(dir string, s core.Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	renders := []struct {
		name   string
		render func(core.Summary) ([]byte, error)
	}{
		{TrendFile, r.MonthlyTrend},
		{CategoryFile, r.CategoryBreakdown},
	}

	var paths []string
	for _, rd := range renders {
		png, err := rd.render(s)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, rd.name)
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", rd.name, err)
		}
		r.logger.Info("Chart written",
			log.FieldOperation, log.OpRender,
			"path", path,
			"bytes", len(png))
		paths = append(paths, path)
	}
	return paths, nil
}
