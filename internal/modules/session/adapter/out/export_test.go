package out

import "time"

// UseManualTicker swaps the wall-clock ticker for ch.
func (t *IntervalTicker) UseManualTicker(ch chan time.Time) {
	t.tickerFactory = func(time.Duration) sessionTicker { return &manualTicker{ch: ch} }
}

type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) Chan() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {}

// SetNow replaces the clock that spaces redials.
func (s *ReconnectingSink) SetNow(now func() time.Time) {
	s.now = now
}
