package ingest

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BTBurke/westgard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestCacheExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache(time.Minute, WithClock(clk.now))
	ds := &Dataset{Parameters: []string{"Glucose"}}
	key := FingerprintString("source")

	c.Put(key, ds)
	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Same(t, ds, got)

	clk.advance(59 * time.Second)
	_, ok = c.Get(key)
	assert.True(t, ok)

	clk.advance(time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok, "entry must expire exactly at its ttl")
	assert.Equal(t, 0, c.Len())
}

func TestCacheLoad(t *testing.T) {
	c := NewCache(time.Minute)
	key := Fingerprint([]byte("workbook"))
	calls := 0
	load := func() (*Dataset, error) {
		calls++
		return &Dataset{}, nil
	}

	_, hit, err := c.Load(key, load)
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.Load(key, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)

	c.Clear()
	_, hit, err = c.Load(key, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	c := NewCache(time.Minute)
	key := FingerprintString("broken")

	_, _, err := c.Load(key, func() (*Dataset, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("a")), Fingerprint([]byte("a")))
	assert.NotEqual(t, Fingerprint([]byte("a")), Fingerprint([]byte("b")))
	assert.Equal(t, Fingerprint([]byte("url")), FingerprintString("url"))
}

func TestLoaderSheetRefresh(t *testing.T) {
	var calls int32
	c := sheetServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(csvSheets[r.URL.Query().Get("sheet")]))
	})
	l := NewLoader(c, testutil.NewTestLogger(t))
	url := "https://docs.google.com/spreadsheets/d/abc123"

	_, err := l.Sheet(context.Background(), url, false)
	require.NoError(t, err)
	_, err = l.Sheet(context.Background(), url, false)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "second load must come from the cache")

	_, err = l.Sheet(context.Background(), url, true)
	require.NoError(t, err)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestLoaderWorkbook(t *testing.T) {
	l := NewLoader(nil, testutil.NewTestLogger(t))
	data := qcWorkbook(t)

	first, err := l.Workbook(data)
	require.NoError(t, err)
	second, err := l.Workbook(data)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
