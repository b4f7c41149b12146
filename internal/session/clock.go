package session

import "time"

// Clock creates tickers; tests substitute a manual implementation
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic pulses until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is backed by time.Ticker
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
