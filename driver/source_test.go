package driver

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFrameQueueOrderAndDeferral(t *testing.T) {
	q := NewFrameQueue()
	var order []int
	q.RequestFrame(func(time.Duration) { order = append(order, 1) })
	q.RequestFrame(func(time.Duration) {
		order = append(order, 2)
		// requested during a pump: runs on the next pump
		q.RequestFrame(func(time.Duration) { order = append(order, 3) })
	})

	if ran := q.Pump(0); ran != 2 {
		t.Fatalf("first pump ran %d callbacks, want 2", ran)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order after first pump = %v", order)
	}
	if q.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", q.Pending())
	}
	q.Pump(16 * time.Millisecond)
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("order after second pump = %v", order)
	}
}

func TestFrameQueueCancel(t *testing.T) {
	cases := []struct {
		name string
		run  func(q *FrameQueue, fired *int) int
		want int
	}{
		{
			name: "cancel_before_pump",
			run: func(q *FrameQueue, fired *int) int {
				h := q.RequestFrame(func(time.Duration) { *fired++ })
				q.CancelFrame(h)
				return q.Pump(0)
			},
			want: 0,
		},
		{
			name: "cancel_sibling_during_pump",
			run: func(q *FrameQueue, fired *int) int {
				var second Handle
				q.RequestFrame(func(time.Duration) { q.CancelFrame(second) })
				second = q.RequestFrame(func(time.Duration) { *fired++ })
				q.Pump(0)
				return *fired
			},
			want: 0,
		},
		{
			name: "cancel_unknown_handle",
			run: func(q *FrameQueue, fired *int) int {
				q.RequestFrame(func(time.Duration) { *fired++ })
				q.CancelFrame(999)
				q.Pump(0)
				return *fired
			},
			want: 1,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fired := 0
			if got := c.run(NewFrameQueue(), &fired); got != c.want {
				t.Fatalf("got %d, want %d", got, c.want)
			}
		})
	}
}

func TestTickerSourcePumpsUntilClosed(t *testing.T) {
	src := NewTickerSource(context.Background(), time.Millisecond)
	var calls atomic.Int64
	var last atomic.Int64
	var loop func(now time.Duration)
	loop = func(now time.Duration) {
		if prev := time.Duration(last.Swap(int64(now))); now < prev {
			t.Errorf("timestamps went backwards: %v -> %v", prev, now)
		}
		calls.Add(1)
		src.RequestFrame(loop)
	}
	src.RequestFrame(loop)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if calls.Load() < 3 {
		t.Fatalf("ticker source ran %d frames", calls.Load())
	}

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("frames ran after Close")
	}
	// second Close is a no-op
	_ = src.Close()
}

func TestTickerSourceStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewTickerSource(ctx, time.Millisecond)
	cancel()
	select {
	case <-src.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("goroutine did not exit after context cancel")
	}
}
