package engine

import (
	"context"
	"sync"
	"time"
)

// Ticker is anything advanced by a Scheduler; *Engine implements it.
type Ticker interface {
	Tick(dt time.Duration) int
}

// Scheduler drives a Ticker from a background loop at a fixed interval,
// passing the measured time since the previous tick.
//
// Start is restartable: starting a running scheduler first stops the previous
// loop, so there is never more than one loop ticking the target.
type Scheduler struct {
	target   Ticker
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a stopped scheduler. A non-positive interval selects DefaultFrameInterval.
func NewScheduler(target Ticker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Scheduler{
		target:   target,
		interval: interval,
	}
}

// Interval returns the tick period
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start launches the tick loop. The loop ends on Stop, on a later Start, or
// when ctx is cancelled. A nil ctx never cancels.
func (s *Scheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true

	go s.run(ctx, s.stopCh, s.doneCh)
}

// Stop ends the tick loop and waits for it to exit.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.running = false
}

// Running reports whether a tick loop is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	select {
	case <-s.doneCh:
		// exited on context cancellation
		return false
	default:
		return true
	}
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.target.Tick(dt)
		}
	}
}
