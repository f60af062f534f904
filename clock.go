package reagent

import (
	"fmt"
	"sync"
	"time"
)

// Clock supplies the current time to system prompt templates.
//
// All methods are available in templates through the .Time field:
//
//	Today is {{.Time.Today}} ({{.Time.Weekday}}).
//	It is {{.Time.Format "15:04"}}.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns the date as YYYY-MM-DD.
	Today() string

	// Weekday returns the day of the week, e.g. "Monday".
	Weekday() string

	// Format formats the current time with a Go layout.
	Format(layout string) string

	// Since describes t relative to today: "today", "yesterday", "3 days ago",
	// "in 2 days".
	Since(t time.Time) string
}

// SystemClock reads the system clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                { return time.Now() }
func (c SystemClock) Today() string               { return c.Now().Format(time.DateOnly) }
func (c SystemClock) Weekday() string             { return c.Now().Weekday().String() }
func (c SystemClock) Format(layout string) string { return c.Now().Format(layout) }
func (c SystemClock) Since(t time.Time) string    { return relativeDay(c.Now(), t) }

// FixedClock always reports the same instant. It is meant for tests.
type FixedClock struct {
	mu sync.RWMutex
	t  time.Time
}

// NewFixedClock creates a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

func (c *FixedClock) Today() string               { return c.Now().Format(time.DateOnly) }
func (c *FixedClock) Weekday() string             { return c.Now().Weekday().String() }
func (c *FixedClock) Format(layout string) string { return c.Now().Format(layout) }
func (c *FixedClock) Since(t time.Time) string    { return relativeDay(c.Now(), t) }

func relativeDay(now, t time.Time) string {
	startOf := func(x time.Time) time.Time {
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, x.Location())
	}
	days := int(startOf(t).Sub(startOf(now)).Hours() / 24)

	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

var (
	_ Clock = SystemClock{}
	_ Clock = (*FixedClock)(nil)
)
