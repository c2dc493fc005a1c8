package out

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrTickerAlreadyStarted = errors.New("ticker already started")

// IntervalTicker drives the session tick from a wall-clock ticker. Stop is
// synchronous: once it returns no callback is running or will run.
type IntervalTicker struct {
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	tickerFactory func(interval time.Duration) sessionTicker
}

func NewIntervalTicker(interval time.Duration) *IntervalTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &IntervalTicker{
		interval: interval,
		tickerFactory: func(interval time.Duration) sessionTicker {
			return newRealTicker(interval)
		},
	}
}

func (t *IntervalTicker) Start(ctx context.Context, fn func(context.Context)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return ErrTickerAlreadyStarted
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	ticker := t.tickerFactory(t.interval)
	t.running = true
	t.stopCh = stopCh
	t.doneCh = doneCh
	t.mu.Unlock()

	go t.run(ctx, ticker, fn, stopCh, doneCh)
	return nil
}

func (t *IntervalTicker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.running = false
	t.stopCh = nil
	t.doneCh = nil
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (t *IntervalTicker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *IntervalTicker) run(ctx context.Context, ticker sessionTicker, fn func(context.Context), stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.Chan():
			// A stop racing with a tick wins.
			select {
			case <-stopCh:
				return
			default:
			}
			fn(ctx)
		}
	}
}

type sessionTicker interface {
	Chan() <-chan time.Time
	Stop()
}

type realTicker struct {
	ticker *time.Ticker
}

func newRealTicker(interval time.Duration) *realTicker {
	return &realTicker{ticker: time.NewTicker(interval)}
}

func (t *realTicker) Chan() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}
