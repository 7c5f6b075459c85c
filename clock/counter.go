// Package clock owns the shared animation tick and the gating rules that
// decide when it may advance.
package clock

import "sync/atomic"

// Ticks is the read side of the animation counter handed to renderers.
type Ticks interface {
	Get() int64
}

// Counter is the global animation tick. It starts at 0, only grows, and is
// written only by a Clock. Reads are atomic so a render goroutine may poll
// it while the scheduling loop runs elsewhere.
type Counter struct {
	n atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Get() int64 {
	if c == nil {
		return 0
	}
	return c.n.Load()
}

func (c *Counter) Increment() {
	c.n.Add(1)
}
