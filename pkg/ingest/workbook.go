package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook loads a dataset from an .xlsx workbook containing the QC data, Historical limits and
// Specification limits sheets
func ReadWorkbook(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	present := map[string]bool{}
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	for _, name := range RequiredSheets {
		if !present[name] {
			return nil, ErrMissingSheets
		}
	}

	tables := make([][][]string, len(RequiredSheets))
	for i, name := range RequiredSheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("could not read sheet '%s': %w", name, err)
		}
		tables[i] = rows
	}
	if err := displayLabels(f, SheetData, tables[0]); err != nil {
		return nil, err
	}
	return NewDataset(tables[0], tables[1], tables[2])
}

// displayLabels replaces the raw date column with the text shown in the sheet, so date serials keep their
// display format
func displayLabels(f *excelize.File, sheet string, raw [][]string) error {
	shown, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("could not read sheet '%s': %w", sheet, err)
	}
	for i, row := range raw {
		if len(row) == 0 || i >= len(shown) || len(shown[i]) == 0 {
			continue
		}
		row[0] = shown[i][0]
	}
	return nil
}
