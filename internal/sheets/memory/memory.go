// Package memory is an in-process sheets.Exporter, used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	reports []sheets.Report
	rows    [][][]any
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// Export keeps the report and its rows and returns a synthetic reference.
func (x *Exporter) Export(_ context.Context, r sheets.Report) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.reports = append(x.reports, r)
	x.rows = append(x.rows, sheets.Rows(r))
	return fmt.Sprintf("mem:%d", len(x.reports)), nil
}

// Reports returns every exported report, oldest first.
func (x *Exporter) Reports() []sheets.Report {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]sheets.Report(nil), x.reports...)
}

// LastRows returns the rows of the latest export, or nil.
func (x *Exporter) LastRows() [][]any {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(x.rows) == 0 {
		return nil
	}
	return x.rows[len(x.rows)-1]
}
