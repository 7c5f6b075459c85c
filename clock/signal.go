package clock

import "sync/atomic"

// Suspension reports whether the host UI is hidden from the user.
type Suspension interface {
	Suspended() bool
}

// Visibility reports whether any open document has an animated tile in view.
// visibility.Tracker implements it.
type Visibility interface {
	AnyVisible() bool
}

// Flag is a Suspension the host flips asynchronously, e.g. from window
// focus events.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) Set(suspended bool) {
	f.v.Store(suspended)
}

func (f *Flag) Suspended() bool {
	if f == nil {
		return false
	}
	return f.v.Load()
}

type alwaysVisible struct{}

func (alwaysVisible) AnyVisible() bool { return true }

type noneVisible struct{}

func (noneVisible) AnyVisible() bool { return false }

type neverSuspended struct{}

func (neverSuspended) Suspended() bool { return false }
