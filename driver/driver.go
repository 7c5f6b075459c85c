package driver

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Ticker is one scheduling step; *clock.Clock implements it.
type Ticker interface {
	Tick(now time.Duration) bool
}

// Driver binds a clock to a frame source.
type Driver struct {
	source FrameSource
	clock  Ticker
	name   string
	logger *log.Logger
}

func New(source FrameSource, clock Ticker) *Driver {
	return &Driver{source: source, clock: clock, name: "driver", logger: log.Default()}
}

// Named sets the name used in log lines.
func (d *Driver) Named(name string) *Driver {
	d.name = name
	return d
}

// WithLogger sets the lifecycle logger; nil silences it.
func (d *Driver) WithLogger(l *log.Logger) *Driver {
	d.logger = l
	return d
}

// Loop is a running, self-rescheduling frame loop.
type Loop struct {
	d *Driver

	// mu serialises a frame against Stop so no tick lands after Stop returns.
	mu      sync.Mutex
	handle  Handle
	stopped atomic.Bool

	frames   atomic.Int64
	advances atomic.Int64
}

// Start registers the first frame callback and returns the loop handle.
func (d *Driver) Start() *Loop {
	l := &Loop{d: d}
	l.mu.Lock()
	l.handle = d.source.RequestFrame(l.frame)
	l.mu.Unlock()
	if d.logger != nil {
		d.logger.Printf("%s: started", d.name)
	}
	return l
}

// Stop cancels the loop; see Loop.Stop.
func (d *Driver) Stop(l *Loop) {
	if l == nil {
		return
	}
	l.Stop()
}

func (l *Loop) frame(now time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped.Load() {
		return
	}
	l.frames.Add(1)
	if l.d.clock != nil && l.d.clock.Tick(now) {
		l.advances.Add(1)
	}
	l.handle = l.d.source.RequestFrame(l.frame)
}

// Stop cancels the pending frame. After Stop returns no further tick runs,
// including callbacks the source had already dequeued. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped.Swap(true) {
		return
	}
	l.d.source.CancelFrame(l.handle)
	if l.d.logger != nil {
		l.d.logger.Printf("%s: stopped after %d frames, %d advances", l.d.name, l.frames.Load(), l.advances.Load())
	}
}

func (l *Loop) Running() bool {
	return !l.stopped.Load()
}

// Frames returns how many frames ran a scheduling step.
func (l *Loop) Frames() int64 {
	return l.frames.Load()
}

// Advances returns how many frames advanced the counter.
func (l *Loop) Advances() int64 {
	return l.advances.Load()
}
