package app

import (
	"context"
	"fmt"

	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
)

// NewExporter creates the exporter selected by EXPORT_BACKEND.
func NewExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	if logger == nil {
		logger = log.Nop()
	}
	switch cfg.ExportBackend {
	case config.ExportSheets:
		return createSheetsExporter(ctx, cfg, logger)
	case config.ExportMemory, "":
		logger.Debug("Using memory exporter")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported export backend: %s", cfg.ExportBackend)
	}
}

func createSheetsExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Exporter, error) {
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
	}
	logger.Info("Using Google Sheets exporter", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
