package pipeline

import (
	"sync"
	"sync/atomic"
)

// StopSignal is the process-wide cooperative shutdown flag.
//
// It is monotonic: once requested it is never cleared. Request may be
// called from any goroutine any number of times.
type StopSignal struct {
	once      sync.Once
	done      chan struct{}
	requested atomic.Bool
}

// NewStopSignal creates a StopSignal in the running state.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Request sets the flag. It reports whether this call was the one that
// set it.
func (s *StopSignal) Request() bool {
	first := false
	s.once.Do(func() {
		s.requested.Store(true)
		close(s.done)
		first = true
	})
	return first
}

// Requested reports whether stop has been requested.
func (s *StopSignal) Requested() bool {
	return s.requested.Load()
}

// Done returns a channel that is closed once stop is requested.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}
