package clock

import (
	"log"
	"sync"
	"time"
)

// DefaultMinInterval is the shortest gap between two advances.
const DefaultMinInterval = 150 * time.Millisecond

type state int

const (
	stateUnknown state = iota
	stateRunning
	stateSuspended
	stateIdle
)

func (s state) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateSuspended:
		return "suspended"
	case stateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Clock advances a Counter at most once per minimum interval, and only while
// the host is not suspended and some animated tile is visible.
type Clock struct {
	name        string
	counter     *Counter
	suspension  Suspension
	visibility  Visibility
	minInterval time.Duration
	logger      *log.Logger

	mu       sync.Mutex
	last     time.Duration
	advanced bool
	state    state
}

type Option func(*Clock)

func WithSuspension(s Suspension) Option {
	return func(c *Clock) {
		if s != nil {
			c.suspension = s
		}
	}
}

func WithVisibility(v Visibility) Option {
	return func(c *Clock) {
		if v != nil {
			c.visibility = v
		}
	}
}

// WithMinInterval overrides DefaultMinInterval. Non-positive values are
// ignored.
func WithMinInterval(d time.Duration) Option {
	return func(c *Clock) {
		if d > 0 {
			c.minInterval = d
		}
	}
}

// WithLogger sets the logger used for state transitions. A nil logger
// silences them.
func WithLogger(l *log.Logger) Option {
	return func(c *Clock) {
		c.logger = l
	}
}

func WithName(name string) Option {
	return func(c *Clock) {
		c.name = name
	}
}

// New returns a gated clock writing to counter. Without WithVisibility the
// clock behaves as if no animated tile were ever visible.
func New(counter *Counter, opts ...Option) *Clock {
	c := &Clock{
		name:        "clock",
		counter:     counter,
		suspension:  neverSuspended{},
		visibility:  noneVisible{},
		minInterval: DefaultMinInterval,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ungated returns a clock that ignores suspension and visibility and only
// honours the minimum interval. The editor's preview loop runs on one.
func Ungated(counter *Counter, opts ...Option) *Clock {
	opts = append([]Option{WithName("preview")}, opts...)
	c := New(counter, opts...)
	c.suspension = neverSuspended{}
	c.visibility = alwaysVisible{}
	return c
}

// Tick runs one scheduling step for a frame at now. It reports whether the
// counter advanced. now must come from a monotonic source.
func (c *Clock) Tick(now time.Duration) bool {
	if c == nil || c.counter == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.suspension.Suspended() {
		c.transition(stateSuspended)
		return false
	}
	if !c.visibility.AnyVisible() {
		c.transition(stateIdle)
		return false
	}
	c.transition(stateRunning)

	if c.advanced && now-c.last < c.minInterval {
		return false
	}
	c.counter.Increment()
	c.last = now
	c.advanced = true
	return true
}

func (c *Clock) MinInterval() time.Duration {
	return c.minInterval
}

func (c *Clock) transition(next state) {
	if c.state == next {
		return
	}
	prev := c.state
	c.state = next
	if c.logger != nil && prev != stateUnknown {
		c.logger.Printf("%s: %s -> %s at tick %d", c.name, prev, next, c.counter.Get())
	}
}
