package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Xebarter/Leap-sub002/internal/config"
	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

const (
	occupancyLedgerRange = "Occupancy!A:J"
	dateLayout           = "2006-01-02"
)

// Ledger records occupancy changes for bookkeeping outside the application.
type Ledger interface {
	AppendOccupancyEvent(ctx context.Context, rec models.OccupancyRecord, event models.OccupancyEvent) error
}

// RowWriter appends one row to a sheet range.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements RowWriter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends the provided values to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row appended to sheet", zap.String("range", sheetRange))
	return nil
}

// SheetLedger writes occupancy events as spreadsheet rows.
type SheetLedger struct {
	writer RowWriter
}

// NewSheetLedger wraps a RowWriter as an occupancy ledger.
func NewSheetLedger(writer RowWriter) *SheetLedger {
	return &SheetLedger{writer: writer}
}

// AppendOccupancyEvent appends one row describing event.
func (l *SheetLedger) AppendOccupancyEvent(ctx context.Context, rec models.OccupancyRecord, event models.OccupancyEvent) error {
	return l.writer.WriteRow(ctx, occupancyLedgerRange, ledgerRow(rec, event))
}

func ledgerRow(rec models.OccupancyRecord, event models.OccupancyEvent) []interface{} {
	return []interface{}{
		event.At.UTC().Format(time.RFC3339),
		rec.PropertyID,
		rec.TenantID,
		string(event.Kind),
		event.PreviousEnd.Format(dateLayout),
		event.NewEnd.Format(dateLayout),
		event.Months,
		rec.MonthsPaid,
		event.Amount.StringFixed(2),
		event.Reason,
	}
}

// NopLedger discards every event. It is used when no spreadsheet is configured.
type NopLedger struct{}

// AppendOccupancyEvent implements Ledger.
func (NopLedger) AppendOccupancyEvent(context.Context, models.OccupancyRecord, models.OccupancyEvent) error {
	return nil
}
