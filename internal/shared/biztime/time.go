// Package biztime keeps every stored and transported timestamp in UTC. The
// business timezone is only used when rendering times for humans.
package biztime

import (
	"sync"
	"time"
)

// GMTLayout formats timestamps the way the payment service expects refund dates.
const GMTLayout = "2006-01-02 15:04:05"

var (
	mu          sync.RWMutex
	bizLocation = time.UTC
	clock       = time.Now
)

// Init sets the business timezone. An empty name keeps UTC.
func Init(tz string) error {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return err
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

// Location returns the business timezone location.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	mu.RLock()
	now := clock
	mu.RUnlock()
	return now().UTC()
}

// SetClock replaces the time source and returns a func restoring the previous one.
func SetClock(fn func() time.Time) (restore func()) {
	mu.Lock()
	prev := clock
	clock = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		clock = prev
		mu.Unlock()
	}
}

// FormatGMT renders t in UTC using GMTLayout.
func FormatGMT(t time.Time) string {
	return t.UTC().Format(GMTLayout)
}

func FormatInBizTimezone(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}
