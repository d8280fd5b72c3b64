package attendance

import (
	"sync"
	"time"
)

// =============================================================================
// LIVE TIMER - Ticks the worked time of a running session
// =============================================================================

// TimerState is Stopped or Running.
type TimerState int

const (
	TimerStopped TimerState = iota
	TimerRunning
)

func (s TimerState) String() string {
	if s == TimerRunning {
		return "running"
	}
	return "stopped"
}

// Tick is one sample of the live display.
type Tick struct {
	At            time.Time `json:"at"`
	WorkedSeconds int       `json:"worked_seconds"`
	Display       string    `json:"display"`
	Running       bool      `json:"running"`
}

// SampleFunc computes the tick for the given instant. Reporting Running == false
// stops the timer after that tick is emitted.
type SampleFunc func(now time.Time) Tick

// LiveTimer owns one ticker goroutine. It starts either explicitly or when a
// reload finds an open session, and stops either explicitly or on the first
// tick that finds no open session.
//
// The emit callback runs on the timer goroutine and must not call Stop.
type LiveTimer struct {
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	state TimerState
	stop  chan struct{}
	done  chan struct{}
}

type TimerOption func(*LiveTimer)

// WithInterval overrides the default one-second tick.
func WithInterval(d time.Duration) TimerOption {
	return func(t *LiveTimer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) TimerOption {
	return func(t *LiveTimer) { t.now = now }
}

func NewLiveTimer(opts ...TimerOption) *LiveTimer {
	done := make(chan struct{})
	close(done)
	t := &LiveTimer{
		interval: time.Second,
		now:      time.Now,
		state:    TimerStopped,
		done:     done,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins ticking. The first tick is emitted immediately.
// It returns false and does nothing if the timer is already running.
func (t *LiveTimer) Start(sample SampleFunc, emit func(Tick)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TimerRunning {
		return false
	}

	t.state = TimerRunning
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stop, t.done, sample, emit)
	return true
}

// Stop halts the timer and returns once the goroutine has exited.
// Stopping a stopped timer is a no-op.
func (t *LiveTimer) Stop() {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	done := t.done
	t.mu.Unlock()

	<-done
}

// State returns the current state.
func (t *LiveTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Running is shorthand for State() == TimerRunning.
func (t *LiveTimer) Running() bool { return t.State() == TimerRunning }

// Done is closed when the current run ends (already closed if never started).
func (t *LiveTimer) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *LiveTimer) run(stop <-chan struct{}, done chan struct{}, sample SampleFunc, emit func(Tick)) {
	defer close(done)
	defer t.finish(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		tick := sample(t.now())
		if emit != nil {
			emit(tick)
		}
		if !tick.Running {
			return
		}

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (t *LiveTimer) finish(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == done {
		t.state = TimerStopped
		t.stop = nil
	}
}
