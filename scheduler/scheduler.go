package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"devmon/log"
	"devmon/models"
)

// State of the refresh loop.
type State int32

const (
	Idle State = iota
	Collecting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	default:
		return "unknown"
	}
}

// Collector produces one snapshot per call.
type Collector interface {
	Collect(ctx context.Context) models.Snapshot
}

// Renderer displays one formatted text block per tick.
type Renderer interface {
	Render(text string) error
}

// Scheduler drives collect-then-render ticks. The next tick is armed only
// after the current one finishes, so ticks never overlap and a slow
// collect never causes a burst of catch-up ticks.
type Scheduler struct {
	collector Collector
	renderer  Renderer
	delay     time.Duration
	format    func(models.Snapshot) string

	state atomic.Int32
	ticks atomic.Uint64
}

func New(collector Collector, renderer Renderer, delay time.Duration) *Scheduler {
	return &Scheduler{
		collector: collector,
		renderer:  renderer,
		delay:     delay,
		format:    models.Format,
	}
}

// Run ticks immediately, then again delay after each tick completes, until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.delay)
		}
	}
}

// Tick runs one collect-then-render cycle. It returns false without doing
// anything if another tick is still collecting.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.state.CompareAndSwap(int32(Idle), int32(Collecting)) {
		log.Debug().Msg("Tick skipped, collection already in progress")
		return false
	}
	defer s.state.Store(int32(Idle))

	start := time.Now()
	snapshot := s.collector.Collect(ctx)
	if ctx.Err() != nil {
		return false
	}

	if err := s.renderer.Render(s.format(snapshot)); err != nil {
		log.Warn().Err(err).Msg("Render failed")
	}
	s.ticks.Add(1)
	log.Debug().Dur("took", time.Since(start)).Msg("Tick complete")
	return true
}

// State reports whether a collect is in flight.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Ticks is the number of completed ticks.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}
