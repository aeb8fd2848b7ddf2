package metric

import (
	"sync"
	"time"
)

// Counter is a monotonically increasing counter that is safe for concurrent use
type Counter struct {
	mu    sync.RWMutex
	value int
}

// Value returns the current value of the counter
func (c *Counter) Value() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Add will increase the current count by i
func (c *Counter) Add(i uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += int(i)
}

// Reset sets the value of the counter to zero
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = 0
}

// NewCounter returns a new monotonically increasing counter
func NewCounter() *Counter {
	return &Counter{}
}

// Window is the count of one closed interval of a windowed counter
type Window struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
	Value    int           `json:"value"`
}

// CounterOption configures a windowed counter
type CounterOption func(*WindowedCounter)

// WithCounterClock replaces the wall clock of a windowed counter
func WithCounterClock(now func() time.Time) CounterOption {
	return func(c *WindowedCounter) {
		c.now = now
	}
}

// WithHistory bounds the number of closed windows that are kept
func WithHistory(n int) CounterOption {
	return func(c *WindowedCounter) {
		c.keep = n
	}
}

// WindowedCounter keeps track of counts within consecutive windows of a set duration.  Closed windows move to the
// history.  Windows without any observations are not kept, so there may be gaps in the timeline.
type WindowedCounter struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time
	keep     int
	current  Window
	hist     []Window
}

// Value returns the count of the current window
func (c *WindowedCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	return c.current.Value
}

// Add will increment the current window by i
func (c *WindowedCounter) Add(i uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	c.current.Value += int(i)
}

// Current returns the open window
func (c *WindowedCounter) Current() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	return c.current
}

// History returns the closed windows, oldest first
func (c *WindowedCounter) History() []Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roll()
	out := make([]Window, len(c.hist))
	copy(out, c.hist)
	return out
}

// Reset clears the history and starts a new zero-valued window
func (c *WindowedCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist = nil
	c.current = Window{Start: c.now().UTC(), Duration: c.duration}
}

func (c *WindowedCounter) roll() {
	now := c.now().UTC()
	end := c.current.Start.Add(c.duration)
	if now.Before(end) {
		return
	}
	if c.current.Value > 0 {
		c.hist = append(c.hist, c.current)
		if c.keep > 0 && len(c.hist) > c.keep {
			c.hist = c.hist[len(c.hist)-c.keep:]
		}
	}
	elapsed := now.Sub(c.current.Start) / c.duration
	c.current = Window{Start: c.current.Start.Add(elapsed * c.duration), Duration: c.duration}
}

// NewWindowedCounter creates a new windowed counter with a window size of duration
func NewWindowedCounter(duration time.Duration, opts ...CounterOption) *WindowedCounter {
	c := &WindowedCounter{
		duration: duration,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current = Window{Start: c.now().UTC(), Duration: duration}
	return c
}
