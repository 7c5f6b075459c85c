// Package driver runs the animation clock off a host's per-frame callback
// primitive and owns the loop's start/stop lifecycle.
package driver

import (
	"context"
	"sync"
	"time"
)

// FrameFunc receives a monotonic timestamp for the frame being presented.
type FrameFunc func(now time.Duration)

// Handle identifies a pending frame registration.
type Handle uint64

// FrameSource is the host's per-frame scheduling primitive: a registered
// callback runs once, on the next frame, unless cancelled first.
type FrameSource interface {
	RequestFrame(fn FrameFunc) Handle
	CancelFrame(h Handle)
}

// FrameQueue is a FrameSource pumped by the host once per frame. Callbacks
// requested while a pump is running are deferred to the next pump.
type FrameQueue struct {
	mu    sync.Mutex
	next  Handle
	order []Handle
	live  map[Handle]FrameFunc
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{live: make(map[Handle]FrameFunc)}
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	h := q.next
	if fn == nil {
		return h
	}
	q.live[h] = fn
	q.order = append(q.order, h)
	return h
}

func (q *FrameQueue) CancelFrame(h Handle) {
	q.mu.Lock()
	delete(q.live, h)
	q.mu.Unlock()
}

// Pump runs every callback registered before the call, in registration
// order, and returns how many ran.
func (q *FrameQueue) Pump(now time.Duration) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, h := range batch {
		q.mu.Lock()
		fn, ok := q.live[h]
		delete(q.live, h)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}

// Pending returns the number of registered, uncancelled callbacks.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.live)
}

// TickerSource is a FrameSource for hosts without a display refresh
// callback: a goroutine pumps a FrameQueue on a fixed interval.
type TickerSource struct {
	*FrameQueue

	start  time.Time
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewTickerSource starts pumping at the given interval until ctx is done or
// Close is called.
func NewTickerSource(ctx context.Context, interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &TickerSource{
		FrameQueue: NewFrameQueue(),
		start:      time.Now(),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go s.run(ctx, interval)
	return s
}

func (s *TickerSource) run(ctx context.Context, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Pump(time.Since(s.start))
		}
	}
}

// Close stops the pumping goroutine and waits for it to exit.
func (s *TickerSource) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}
