package westgard

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/BTBurke/westgard/pkg/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	ds := testDataset(t)
	res, err := Analyze(context.Background(), ds, Request{Limits: stat.Historical})
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatJSON, ds, res))

		var r struct {
			DateColumn string `json:"date_column"`
			Rows       int    `json:"rows"`
			Results    []struct {
				Parameter  string           `json:"parameter"`
				Violations map[string][]int `json:"violations"`
				Chart      *json.RawMessage `json:"chart"`
				Warning    string           `json:"warning"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
		assert.Equal(t, "Date", r.DateColumn)
		assert.Equal(t, 5, r.Rows)
		require.Len(t, r.Results, 3)
		assert.Equal(t, []int{4}, r.Results[0].Violations["1-3s"])
		assert.NotNil(t, r.Results[0].Chart)
		assert.Nil(t, r.Results[2].Chart)
		assert.NotEmpty(t, r.Results[2].Warning)
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteReport(&buf, FormatTable, ds, res))
		out := buf.String()
		assert.Contains(t, out, "Glucose")
		assert.Contains(t, out, "d5")
		assert.Contains(t, out, "standard deviation is zero or missing")
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, WriteReport(&bytes.Buffer{}, "xml", ds, res))
	})
}
