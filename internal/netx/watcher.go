// Package netx watches connectivity to the holder API.
package netx

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
)

// Watcher pings the API every Interval. After a failed ping it keeps
// probing with exponential backoff, capped at MaxBackoff, and calls every
// WhenReachable callback once the API answers again.
type Watcher struct {
	ping       func(ctx context.Context) error
	interval   time.Duration
	maxBackoff time.Duration
	log        logging.Logger

	mu        sync.Mutex
	online    bool
	callbacks []func()
}

func NewWatcher(ping func(ctx context.Context) error, interval, maxBackoff time.Duration, log logging.Logger) *Watcher {
	if maxBackoff < interval {
		maxBackoff = interval
	}
	return &Watcher{
		ping:       ping,
		interval:   interval,
		maxBackoff: maxBackoff,
		log:        logging.OrNop(log),
		online:     true,
	}
}

// WhenReachable registers fn for every offline to online transition. fn
// runs on its own goroutine.
func (w *Watcher) WhenReachable(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Online reports the result of the last probe. It is true before the first.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Run probes until ctx is done and returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.ping(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.setOnline(ctx, false)
			w.log.Info(ctx, "api unreachable", "error", err)
			if err := w.waitOnline(ctx); err != nil {
				return err
			}
		}
		w.setOnline(ctx, true)

		t := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (w *Watcher) waitOnline(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.interval
	b.MaxInterval = w.maxBackoff
	b.MaxElapsedTime = 0

	return backoff.RetryNotify(
		func() error { return w.ping(ctx) },
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			w.log.Debug(ctx, "still offline", "retryIn", next, "error", err)
		},
	)
}

func (w *Watcher) setOnline(ctx context.Context, online bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	was := w.online
	w.online = online
	if was || !online {
		return
	}
	w.log.Info(ctx, "api reachable again")
	for _, fn := range w.callbacks {
		go fn()
	}
}
