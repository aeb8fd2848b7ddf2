package ingest

import (
	"bytes"
	"testing"

	"github.com/BTBurke/westgard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qcWorkbook(t *testing.T) []byte {
	return testutil.Workbook(t, map[string][][]interface{}{
		SheetData: {
			{"Date", "Glucose", "Sodium"},
			{"2024-01-01", 5.1, 140},
			{"2024-01-02", 5.4, 141},
			{"2024-01-03", "", 139},
		},
		SheetHistorical: {
			{"Glucose", "Sodium"},
			{5.2, 140},
			{0.1, 1.5},
		},
		SheetSpecification: {
			{"Glucose", "Sodium"},
			{5, 140},
			{0.25, 2},
		},
	})
}

func TestReadWorkbook(t *testing.T) {
	ds, err := ReadWorkbook(bytes.NewReader(qcWorkbook(t)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Glucose", "Sodium"}, ds.Parameters)
	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, "2024-01-02", ds.Label(1))

	glucose, err := ds.Series("Glucose")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, glucose.Indices())
	assert.Equal(t, []float64{5.1, 5.4}, glucose.Values())

	assert.Equal(t, 1.5, ds.Historical["Sodium"].Dispersion)
	assert.Equal(t, 0.25, ds.Specification["Glucose"].Dispersion)
}

func TestReadWorkbookMissingSheet(t *testing.T) {
	data := testutil.Workbook(t, map[string][][]interface{}{
		SheetData:       {{"Date", "Glucose"}, {"2024-01-01", 5.1}},
		SheetHistorical: {{"Glucose"}, {5.2}, {0.1}},
	})
	_, err := ReadWorkbook(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrMissingSheets)
}

func TestReadWorkbookNotXLSX(t *testing.T) {
	_, err := ReadWorkbook(bytes.NewReader([]byte("Date,Glucose\n")))
	assert.ErrorIs(t, err, ErrUnreadableWorkbook)
}

func TestReadWorkbookIgnoresNumberFormat(t *testing.T) {
	data := testutil.Workbook(t, map[string][][]interface{}{
		SheetData: {
			{"Run", "Glucose"},
			{1.234, 5.1234},
			{"2024-01-02", 5.0},
		},
		SheetHistorical:    {{"Glucose"}, {5.2}, {0.004}},
		SheetSpecification: {{"Glucose"}, {5}, {0.25}},
	},
		testutil.WithNumFmt(SheetData, "A2", 2),
		testutil.WithNumFmt(SheetData, "B2", 2),
		testutil.WithNumFmt(SheetHistorical, "A3", 2),
	)
	ds, err := ReadWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	glucose, err := ds.Series("Glucose")
	require.NoError(t, err)
	assert.Equal(t, []float64{5.1234, 5}, glucose.Values())
	assert.Equal(t, 0.004, ds.Historical["Glucose"].Dispersion)
	assert.Equal(t, "1.23", ds.Label(0))
	assert.Equal(t, "2024-01-02", ds.Label(1))
}
