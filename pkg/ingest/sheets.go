package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-resty/resty/v2"
)

const googleSheets = "https://docs.google.com/spreadsheets/d"

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// SheetID extracts the spreadsheet id from a Google Sheets URL
func SheetID(url string) (string, error) {
	m := sheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSheetURL, url)
	}
	return m[1], nil
}

// SheetsClient downloads the CSV export of each required sheet of a public Google Sheet
type SheetsClient struct {
	client  *resty.Client
	baseURL string
	backoff func() backoff.BackOff
	logger  *slog.Logger
}

type SheetsOption func(c *SheetsClient) error

// NewSheetsClient returns a client for public Google Sheets.  Failed downloads are retried with exponential
// backoff unless the server answers with a 4xx status.
func NewSheetsClient(opts ...SheetsOption) (*SheetsClient, error) {
	c := &SheetsClient{
		client:  resty.New().SetTimeout(30 * time.Second),
		baseURL: googleSheets,
		backoff: defaultBackOff,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %v", err)
		}
	}
	return c, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithMaxRetries(b, 4)
}

// WithBaseURL replaces the spreadsheets endpoint, e.g. for a mirror or a test server
func WithBaseURL(u string) SheetsOption {
	return func(c *SheetsClient) error {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("base url must be http or https: %s", u)
		}
		c.baseURL = strings.TrimSuffix(u, "/")
		return nil
	}
}

// WithBackOff sets the retry policy.  The function is called once per sheet download.
func WithBackOff(b func() backoff.BackOff) SheetsOption {
	return func(c *SheetsClient) error {
		c.backoff = b
		return nil
	}
}

// WithTimeout sets the timeout of a single download attempt
func WithTimeout(d time.Duration) SheetsOption {
	return func(c *SheetsClient) error {
		c.client.SetTimeout(d)
		return nil
	}
}

func WithSheetsLogger(l *slog.Logger) SheetsOption {
	return func(c *SheetsClient) error {
		c.logger = l
		return nil
	}
}

// Load downloads and parses the three required sheets of the spreadsheet at url
func (c *SheetsClient) Load(ctx context.Context, url string) (*Dataset, error) {
	id, err := SheetID(url)
	if err != nil {
		return nil, err
	}

	tables := make([][][]string, len(RequiredSheets))
	for i, name := range RequiredSheets {
		rows, err := c.fetch(ctx, id, name)
		if err != nil {
			return nil, err
		}
		tables[i] = rows
	}
	return NewDataset(tables[0], tables[1], tables[2])
}

func (c *SheetsClient) fetch(ctx context.Context, id string, sheet string) ([][]string, error) {
	endpoint := c.baseURL + "/" + id + "/gviz/tq"
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{"tqx": "out:csv", "sheet": sheet}).
			Get(endpoint)
		if err != nil {
			c.logger.Debug("sheet download failed", "sheet", sheet, "attempt", attempt, "err", err)
			if ctx.Err() != nil {
				return backoff.Permanent(&FetchError{Sheet: sheet, Err: ctx.Err()})
			}
			return &FetchError{Sheet: sheet, Err: err}
		}
		status := resp.StatusCode()
		switch {
		case status >= 400 && status < 500:
			return backoff.Permanent(&FetchError{Sheet: sheet, Status: status, Err: fmt.Errorf("%s; ensure the link is correct and the sheet is public", http.StatusText(status))})
		case resp.IsError():
			c.logger.Debug("sheet download failed", "sheet", sheet, "attempt", attempt, "status", status)
			return &FetchError{Sheet: sheet, Status: status, Err: fmt.Errorf("%s", http.StatusText(status))}
		}
		body = resp.Body()
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.backoff(), ctx)); err != nil {
		return nil, err
	}
	c.logger.Debug("sheet downloaded", "sheet", sheet, "attempts", attempt, "bytes", len(body))

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &FetchError{Sheet: sheet, Err: fmt.Errorf("invalid csv: %w", err)}
	}
	return rows, nil
}
