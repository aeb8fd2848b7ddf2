package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameMarshal(t *testing.T) {
	tt := []struct {
		name string
		n    string
		md   map[string]string
		exp  string
	}{
		{name: "no metadata", n: "glucose", exp: "glucose"},
		{name: "metadata", n: "glucose", md: map[string]string{"source": "workbook", "limits": "data"}, exp: "glucose[limits=data source=workbook]"},
		{name: "metadata spaces", n: "glucose", md: map[string]string{"lot": "lot 7", "limits": "data"}, exp: "glucose[limits=data lot=\"lot 7\"]"},
		{name: "metadata with annotations", n: "glucose", md: map[string]string{"limits": "data", "refreshed": ""}, exp: "glucose[limits=data @refreshed]"},
		{name: "annotations only", n: "glucose", md: map[string]string{"refreshed": "", "cached": ""}, exp: "glucose[@cached @refreshed]"},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			n := NewName(tc.n, tc.md)
			assert.Equal(t, tc.exp, n.String())
		})
	}
}

func TestNameWith(t *testing.T) {
	tt := []struct {
		name string
		add  map[string]string
		exp  map[string]string
	}{
		{name: "no replacement", add: map[string]string{"c": "d", "e": "f"}, exp: map[string]string{"a": "b", "c": "d", "e": "f"}},
		{name: "replacement", add: map[string]string{"a": "d", "e": "f"}, exp: map[string]string{"a": "d", "e": "f"}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			ini := map[string]string{"a": "b"}
			n := NewName("test", ini)
			out := n.With(tc.add)
			assert.Equal(t, metadata(tc.exp), out.md)
			assert.Equal(t, metadata(ini), n.md, "original name must not change")
		})
	}

	t.Run("nil metadata", func(t *testing.T) {
		out := NewName("test", nil).With(map[string]string{"a": "b"})
		assert.Equal(t, "test[a=b]", out.String())
		assert.Equal(t, "test", out.Base())
	})
}
