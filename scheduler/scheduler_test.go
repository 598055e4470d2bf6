package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devmon/models"
)

// slowCollector sleeps for work and tracks how many collects overlap.
type slowCollector struct {
	work     time.Duration
	inflight atomic.Int32
	maxSeen  atomic.Int32

	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (c *slowCollector) Collect(ctx context.Context) models.Snapshot {
	n := c.inflight.Add(1)
	for {
		seen := c.maxSeen.Load()
		if n <= seen || c.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	c.mu.Lock()
	c.starts = append(c.starts, time.Now())
	c.mu.Unlock()

	time.Sleep(c.work)

	c.mu.Lock()
	c.ends = append(c.ends, time.Now())
	c.mu.Unlock()
	c.inflight.Add(-1)

	return models.Snapshot{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local),
		CPUName:   models.Available("test cpu"),
	}
}

func (c *slowCollector) intervals() (starts, ends []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Time(nil), c.starts...), append([]time.Time(nil), c.ends...)
}

type recordingRenderer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingRenderer) Render(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return r.err
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d + 2*time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunRendersFormattedSnapshots(t *testing.T) {
	collector := &slowCollector{}
	renderer := &recordingRenderer{}
	s := New(collector, renderer, 10*time.Millisecond)

	runFor(t, s, 200*time.Millisecond)

	require.GreaterOrEqual(t, renderer.count(), 2)
	assert.Contains(t, renderer.texts[0], "03:04\n")
	assert.Contains(t, renderer.texts[0], "Type: test cpu")
	assert.Equal(t, uint64(renderer.count()), s.Ticks())
	assert.Equal(t, Idle, s.State())
}

func TestRunFirstTickIsImmediate(t *testing.T) {
	collector := &slowCollector{}
	renderer := &recordingRenderer{}
	s := New(collector, renderer, time.Hour)

	runFor(t, s, 100*time.Millisecond)

	assert.Equal(t, 1, renderer.count())
}

func TestRunNeverOverlapsCollects(t *testing.T) {
	collector := &slowCollector{work: 20 * time.Millisecond}
	s := New(collector, &recordingRenderer{}, time.Millisecond)

	runFor(t, s, 250*time.Millisecond)

	assert.Equal(t, int32(1), collector.maxSeen.Load())
}

func TestRunDelayMeasuredFromCompletion(t *testing.T) {
	const work, delay = 30 * time.Millisecond, 40 * time.Millisecond
	collector := &slowCollector{work: work}
	s := New(collector, &recordingRenderer{}, delay)

	runFor(t, s, 400*time.Millisecond)

	starts, ends := collector.intervals()
	require.GreaterOrEqual(t, len(starts), 3)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(ends[i-1]), delay,
			"tick %d started before the delay after tick %d elapsed", i, i-1)
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), work+delay)
	}
}

func TestRunSlowCollectDoesNotCatchUp(t *testing.T) {
	// Collect takes far longer than the delay; ticks must still be strictly
	// sequential, one per collect duration plus delay.
	collector := &slowCollector{work: 60 * time.Millisecond}
	s := New(collector, &recordingRenderer{}, 5*time.Millisecond)

	runFor(t, s, 300*time.Millisecond)

	starts, _ := collector.intervals()
	assert.LessOrEqual(t, len(starts), 5)
	assert.Equal(t, int32(1), collector.maxSeen.Load())
}

func TestRunContinuesAfterRenderError(t *testing.T) {
	renderer := &recordingRenderer{err: errors.New("screen gone")}
	s := New(&slowCollector{}, renderer, 5*time.Millisecond)

	runFor(t, s, 100*time.Millisecond)

	assert.GreaterOrEqual(t, renderer.count(), 2)
}

// gatedCollector blocks inside Collect until released.
type gatedCollector struct {
	entered chan struct{}
	release chan struct{}
}

func (c *gatedCollector) Collect(context.Context) models.Snapshot {
	c.entered <- struct{}{}
	<-c.release
	return models.Snapshot{Timestamp: time.Now()}
}

func TestTickRefusesWhileCollecting(t *testing.T) {
	collector := &gatedCollector{entered: make(chan struct{}), release: make(chan struct{})}
	renderer := &recordingRenderer{}
	s := New(collector, renderer, time.Second)
	ctx := context.Background()

	first := make(chan bool)
	go func() { first <- s.Tick(ctx) }()
	<-collector.entered

	assert.Equal(t, Collecting, s.State())
	assert.False(t, s.Tick(ctx), "second tick must not start while collecting")

	close(collector.release)
	assert.True(t, <-first)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1, renderer.count())
}

func TestTickSkipsRenderWhenCancelled(t *testing.T) {
	renderer := &recordingRenderer{}
	s := New(&slowCollector{}, renderer, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, s.Tick(ctx))
	assert.Zero(t, renderer.count())
	assert.Equal(t, Idle, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "collecting", Collecting.String())
	assert.Equal(t, "unknown", State(7).String())
}
