package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSheets is returned when a workbook does not contain all of the required sheets
	ErrMissingSheets = errors.New("the workbook must contain the sheets: 'QC data', 'Historical limits', and 'Specification limits'")

	// ErrUnreadableWorkbook is returned when an upload is not an .xlsx workbook
	ErrUnreadableWorkbook = errors.New("could not open workbook")

	// ErrMalformedData is returned when the QC data sheet has no parameter columns
	ErrMalformedData = errors.New("malformed QC data")

	// ErrMalformedLimits is returned when a limits sheet has a non-numeric mean or standard deviation
	ErrMalformedLimits = errors.New("malformed limits table")

	// ErrInvalidSheetURL is returned when a Google Sheets URL does not contain a spreadsheet id
	ErrInvalidSheetURL = errors.New("invalid Google Sheets URL")

	// ErrUnknownParameter is returned when a parameter is not a column of the QC data
	ErrUnknownParameter = errors.New("unknown parameter")
)

// FetchError is returned when a sheet cannot be downloaded after retrying.  Status is zero when no HTTP
// response was received.
type FetchError struct {
	Sheet  string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to load sheet '%s' (status %d): %v", e.Sheet, e.Status, e.Err)
	}
	return fmt.Sprintf("failed to load sheet '%s': %v", e.Sheet, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
