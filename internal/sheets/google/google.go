package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"expensetracker/internal/log"
	ports "expensetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when Config.SheetName is empty.
const DefaultSheetName = "Expenses"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.Exporter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to write it.
// ServiceAccountJSON wins over ServiceAccountFile; with neither set,
// GOOGLE_APPLICATION_CREDENTIALS is consulted.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets exporter authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.DebugContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)

	return NewWithService(svc, spreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Export replaces the contents of the configured sheet with the report.
func (c *Client) Export(ctx context.Context, r ports.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rows := ports.Rows(r)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	rng := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update sheet %s: %w", c.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A1:%s%d", c.sheetName, lastColumn(rows), len(rows))
	c.logger.InfoContext(ctx, "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(r.Expenses),
		"range", ref)
	return ref, nil
}

// lastColumn returns the letter of the widest row's last column.
func lastColumn(rows [][]any) string {
	width := 1
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return columnName(width)
}

func columnName(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
