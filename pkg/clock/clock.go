// Package clock abstracts wall-clock access so the control loops can
// run against virtual time in tests. Production code uses New; tests
// use NewFake and advance time explicitly instead of sleeping.
package clock

import "time"

// Clock supplies the current time and interval tickers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// New returns a Clock backed by the system clock.
func New() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *systemTicker) Stop() {
	t.ticker.Stop()
}
