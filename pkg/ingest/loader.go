package ingest

import (
	"bytes"
	"context"
	"log/slog"
)

// Loader reads QC sources through the workbook and sheet caches
type Loader struct {
	Workbooks *Cache
	Sheets    *Cache
	client    *SheetsClient
	logger    *slog.Logger
}

// NewLoader returns a loader with the default cache lifetimes
func NewLoader(client *SheetsClient, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Workbooks: NewCache(WorkbookTTL),
		Sheets:    NewCache(SheetTTL),
		client:    client,
		logger:    logger,
	}
}

// Workbook parses an uploaded workbook, reusing the result for byte-identical uploads
func (l *Loader) Workbook(data []byte) (*Dataset, error) {
	key := Fingerprint(data)
	ds, hit, err := l.Workbooks.Load(key, func() (*Dataset, error) {
		return ReadWorkbook(bytes.NewReader(data))
	})
	if err != nil {
		return nil, err
	}
	l.logger.Debug("workbook loaded", "fingerprint", key, "cached", hit, "parameters", len(ds.Parameters))
	return ds, nil
}

// Sheet loads a Google Sheet.  With refresh set, every cached sheet is dropped first.
func (l *Loader) Sheet(ctx context.Context, url string, refresh bool) (*Dataset, error) {
	if refresh {
		l.Sheets.Clear()
	}
	key := FingerprintString(url)
	ds, hit, err := l.Sheets.Load(key, func() (*Dataset, error) {
		return l.client.Load(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	l.logger.Debug("sheet loaded", "url", url, "cached", hit, "parameters", len(ds.Parameters))
	return ds, nil
}
