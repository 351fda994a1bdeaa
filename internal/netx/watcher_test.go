package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_WhenReachable(t *testing.T) {
	var up atomic.Bool
	var pings atomic.Int32
	ping := func(context.Context) error {
		pings.Add(1)
		if up.Load() {
			return nil
		}
		return errors.New("offline")
	}

	w := NewWatcher(ping, 5*time.Millisecond, 20*time.Millisecond, nil)
	reachable := make(chan struct{}, 4)
	w.WhenReachable(func() { reachable <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return !w.Online() }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return pings.Load() >= 3 }, time.Second, time.Millisecond)
	select {
	case <-reachable:
		t.Fatal("reachable while offline")
	default:
	}

	up.Store(true)
	select {
	case <-reachable:
	case <-time.After(time.Second):
		t.Fatal("no reachable callback")
	}
	assert.True(t, w.Online())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, reachable, "one transition, one callback")
}

func TestWatcher_StaysQuietWhileOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var pings atomic.Int32
	ping := func(ctx context.Context) error {
		pings.Add(1)
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, srv.URL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}

	w := NewWatcher(ping, 2*time.Millisecond, time.Millisecond, nil)
	var calls atomic.Int32
	w.WhenReachable(func() { calls.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, pings.Load(), int32(1))
	assert.Zero(t, calls.Load())
	assert.True(t, w.Online())
}
