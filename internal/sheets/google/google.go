// Package google stores transactions in a Google Sheets tab laid out as
// ID | Date | Type | Amount | Category, with a header in row 1.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var _ storage.Store = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

// New builds a client from cfg. Extra options are passed to the Sheets
// service after the credential options, so tests can point it at a fake.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if logger == nil {
		logger = log.Nop()
	}
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}

	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger = logger.WithComponent(log.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets client ready", "spreadsheet_id", id, "sheet", sheet)
	return &Client{svc: svc, spreadsheetID: id, sheet: sheet, logger: logger}, nil
}

func credentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func (c *Client) rng(cells string) string {
	return fmt.Sprintf("%s!%s", c.sheet, cells)
}

// Init writes the header row when the tab is empty.
func (c *Client) Init(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A1:E1")).Context(ctx).Do()
	if err != nil {
		return &core.StorageError{Op: log.OpInit, Err: fmt.Errorf("read header: %w", err)}
	}
	if len(resp.Values) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{headerRow}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rng("A1:E1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return &core.StorageError{Op: log.OpInit, Err: fmt.Errorf("write header: %w", err)}
	}
	return nil
}

func (c *Client) LoadAll(ctx context.Context) ([]core.Transaction, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng("A:E")).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, &core.StorageError{Op: log.OpLoad, Err: err}
	}
	txs, skipped := parseRows(resp.Values)
	for _, s := range skipped {
		c.logger.WarnContext(ctx, "Skipping malformed sheet row", "row", s.row, log.FieldError, s.err)
	}
	return txs, nil
}

// Append adds tx after the last row. Values are written RAW so dates and
// amounts keep their exact text.
func (c *Client) Append(ctx context.Context, tx core.Transaction) error {
	vr := &gsheet.ValueRange{Values: [][]any{toRow(tx)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rng("A:E"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return &core.StorageError{Op: log.OpAppend, Err: fmt.Errorf("append to %s: %w", c.sheet, err)}
	}
	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Transaction appended to sheet", log.FieldTxID, tx.ID, "range", ref)
	return nil
}

func (c *Client) NextID(ctx context.Context) (int64, error) {
	txs, err := c.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return core.NextID(txs), nil
}
