package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	rowCacheSize = 10000
	rowCacheTTL  = 10 * time.Minute
)

// Config selects the spreadsheet and service-account credentials.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors records into a single sheet, one row per record.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	// mu serialises writes so two upserts never claim the same free row.
	mu   sync.Mutex
	rows *cache.LRUCache[int]
}

var _ ports.SyncTarget = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing service; tests point it at a fake endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if logger == nil {
		logger = log.Default().WithComponent(log.ComponentSheets)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
		rows:          cache.NewLRUCache[int](rowCacheSize, rowCacheTTL),
	}
}

// RowCache exposes the id to row index cache for periodic cleanup.
func (c *Client) RowCache() cache.Cleaner {
	return c.rows
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither inline JSON nor a
// file path is configured.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	creds, err := googleauth.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	pooled := newHTTPClientWithPooling()
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: creds.TokenSource, Base: pooled.Transport},
		Timeout:   pooled.Timeout,
	}

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling, timeouts and keep-alive.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Upsert writes tx over its existing row, or at the first row after the last
// used one. An empty sheet gets a header row first.
func (c *Client) Upsert(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if !tx.Kind.Valid() || tx.ID == "" {
		return fmt.Errorf("upsert row: invalid record %s/%q", tx.Kind, tx.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := rowKey(tx.Kind, tx.ID)
	row, ok := c.rows.Get(key)
	if !ok {
		idx, err := c.loadIndex(ctx)
		if err != nil {
			return err
		}
		row, ok = idx.rows[key]
		if !ok {
			if idx.last == 0 {
				if err := c.writeRow(ctx, 1, headerRow()); err != nil {
					return fmt.Errorf("write header: %w", err)
				}
				idx.last = 1
			}
			row = idx.last + 1
		}
	}

	if err := c.writeRow(ctx, row, formatRow(tx)); err != nil {
		// The cached index may point at a row that was edited by hand.
		c.rows.Delete(key)
		return fmt.Errorf("write row %d: %w", row, err)
	}
	c.rows.Set(key, row)

	c.logger.DebugContext(ctx, "Row upserted",
		log.FieldKind, tx.Kind.String(),
		log.FieldRecordID, tx.ID,
		log.FieldSheetRow, row)
	return nil
}

// Remove clears the record's row. The row is not deleted so cached indexes of
// other records stay valid.
func (c *Client) Remove(ctx context.Context, kind core.Kind, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := rowKey(kind, id)
	row, ok := c.rows.Get(key)
	if !ok {
		idx, err := c.loadIndex(ctx)
		if err != nil {
			return err
		}
		if row, ok = idx.rows[key]; !ok {
			return nil
		}
	}

	rng := fmt.Sprintf("%s!A%d:I%d", c.sheetName, row, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear row %d: %w", row, err)
	}
	c.rows.Delete(key)

	c.logger.DebugContext(ctx, "Row cleared",
		log.FieldKind, kind.String(),
		log.FieldRecordID, id,
		log.FieldSheetRow, row)
	return nil
}

// Refs lists every record that currently has a row.
func (c *Client) Refs(ctx context.Context) ([]ports.RowRef, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.refs, nil
}

// loadIndex reads the ID and Type columns and refreshes the row cache.
func (c *Client) loadIndex(ctx context.Context) (rowIndex, error) {
	rng := fmt.Sprintf("%s!A:B", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return rowIndex{}, fmt.Errorf("read index %s: %w", rng, err)
	}
	idx := parseIndex(resp.Values)
	for key, row := range idx.rows {
		c.rows.Set(key, row)
	}
	return idx, nil
}

func (c *Client) writeRow(ctx context.Context, row int, values []interface{}) error {
	rng := fmt.Sprintf("%s!A%d:I%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]interface{}{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}
