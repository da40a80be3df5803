package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	apperrors "github.com/kyvra-tech/hackathon-registration-backend/pkg/errors"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// Store is the part of the spreadsheet the registration pipeline depends on
type Store interface {
	AppendRow(ctx context.Context, row []string) error
	ReadColumn(ctx context.Context, rng string) ([]string, error)
}

// Client talks to one tab of one spreadsheet through the Sheets v4 API
type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	sheetName     string
	metrics       *metrics.Metrics
}

// New authenticates with the service account described by cfg
func New(ctx context.Context, cfg config.SheetsConfig, m *metrics.Metrics) (*Client, error) {
	creds, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg.SpreadsheetID, cfg.SheetName, m, creds, option.WithScopes(sheetsv4.SpreadsheetsScope))
}

// NewWithOptions builds a client from raw API options
func NewWithOptions(ctx context.Context, spreadsheetID, sheetName string, m *metrics.Metrics, opts ...option.ClientOption) (*Client, error) {
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, sheetName: sheetName, metrics: m}, nil
}

func credentialsOption(cfg config.SheetsConfig) (option.ClientOption, error) {
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("service account json: %w", err)
		}
		return option.WithCredentialsFile(cfg.CredentialsFile), nil
	}

	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": cfg.ClientEmail,
		"private_key":  cfg.PrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode service account credentials: %w", err)
	}
	return option.WithCredentialsJSON(raw), nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

func (c *Client) SheetName() string { return c.sheetName }

// ColumnRange returns the A1 range covering a whole column of the registration tab
func (c *Client) ColumnRange(column string) string {
	return fmt.Sprintf("%s!%s:%s", c.sheetName, column, column)
}

// AppendRow inserts row after the last non-empty row of the tab
func (c *Client) AppendRow(ctx context.Context, row []string) (err error) {
	defer c.observe("append", time.Now(), &err)

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{values}}
	_, err = c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!"+FullRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.Unavailable(err, "failed to append row")
	}
	return nil
}

// ReadColumn returns the first cell of every row in rng, header included
func (c *Client) ReadColumn(ctx context.Context, rng string) ([]string, error) {
	values, err := c.read(ctx, "read_column", rng)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, row := range values {
		out = append(out, get(row, 0))
	}
	return out, nil
}

// ReadRows returns every registration below the header row
func (c *Client) ReadRows(ctx context.Context) ([][]string, error) {
	values, err := c.read(ctx, "read_rows", c.sheetName+"!A2:M")
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, ColumnCount)
		for i := range row {
			row[i] = get(v, i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EnsureHeaders writes the header row when the first row is empty. It reports
// whether anything was written.
func (c *Client) EnsureHeaders(ctx context.Context) (bool, error) {
	values, err := c.read(ctx, "read_headers", c.sheetName+"!"+HeaderRange)
	if err != nil {
		return false, err
	}
	if len(values) > 0 && len(values[0]) > 0 {
		return false, nil
	}

	headers := Headers()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}

	start := time.Now()
	_, err = c.srv.Spreadsheets.Values.Update(c.spreadsheetID, c.sheetName+"!"+HeaderRange,
		&sheetsv4.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	c.observe("write_headers", start, &err)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to write header row")
	}
	return true, nil
}

// Ping checks that the spreadsheet is reachable with the current credentials
func (c *Client) Ping(ctx context.Context) (err error) {
	defer c.observe("ping", time.Now(), &err)

	_, err = c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return apperrors.Unavailable(err, "spreadsheet unreachable")
	}
	return nil
}

func (c *Client) read(ctx context.Context, op, rng string) (values [][]interface{}, err error) {
	defer c.observe(op, time.Now(), &err)

	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to read "+rng)
	}
	return resp.Values, nil
}

func (c *Client) observe(op string, start time.Time, err *error) {
	c.metrics.RecordSheetCall(op, *err, time.Since(start))
}

func get(row []interface{}, i int) string {
	if i < len(row) && row[i] != nil {
		return fmt.Sprint(row[i])
	}
	return ""
}
