package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WorkbookOption changes a test workbook after its rows are written
type WorkbookOption func(t testing.TB, f *excelize.File)

// WithNumFmt applies a built-in number format, e.g. 2 for "0.00", to a cell
func WithNumFmt(sheet, cell string, numFmt int) WorkbookOption {
	return func(t testing.TB, f *excelize.File) {
		style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(sheet, cell, cell, style))
	}
}

// Workbook writes the given sheets to an in-memory .xlsx file
func Workbook(t testing.TB, sheets map[string][][]interface{}, opts ...WorkbookOption) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	for _, opt := range opts {
		opt(t, f)
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
