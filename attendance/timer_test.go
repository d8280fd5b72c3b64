package attendance_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/attendance"
)

func runningSample(now time.Time) attendance.Tick {
	return attendance.Tick{At: now, Running: true}
}

func TestLiveTimer_StartStop(t *testing.T) {
	timer := attendance.NewLiveTimer(attendance.WithInterval(5 * time.Millisecond))
	assert.False(t, timer.Running())

	var ticks atomic.Int32
	first := make(chan struct{})
	var once sync.Once

	// WHEN: Started
	started := timer.Start(runningSample, func(attendance.Tick) {
		ticks.Add(1)
		once.Do(func() { close(first) })
	})
	require.True(t, started)
	assert.True(t, timer.Running())

	// THEN: The first tick is immediate
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("no tick emitted")
	}

	// AND: Starting again is a no-op
	assert.False(t, timer.Start(runningSample, nil))

	// WHEN: Stopped (twice)
	timer.Stop()
	timer.Stop()

	// THEN: The goroutine is gone and no more ticks arrive
	assert.False(t, timer.Running())
	select {
	case <-timer.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
	n := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, ticks.Load())
}

func TestLiveTimer_AutoStopsWhenNoOpenSession(t *testing.T) {
	// GIVEN: A sample that reports a closed session on the third tick
	var calls atomic.Int32
	sample := func(now time.Time) attendance.Tick {
		n := calls.Add(1)
		return attendance.Tick{At: now, Running: n < 3}
	}

	timer := attendance.NewLiveTimer(attendance.WithInterval(time.Millisecond))
	require.True(t, timer.Start(sample, nil))

	select {
	case <-timer.Done():
	case <-time.After(time.Second):
		t.Fatal("timer did not stop on its own")
	}

	assert.False(t, timer.Running())
	assert.Equal(t, int32(3), calls.Load())

	// Restarting after an auto-stop works
	require.True(t, timer.Start(sample, nil))
	<-timer.Done()
}

func TestLiveTimer_StopBeforeStart(t *testing.T) {
	timer := attendance.NewLiveTimer()
	timer.Stop()
	assert.Equal(t, attendance.TimerStopped, timer.State())
}

func TestLiveTimer_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	timer := attendance.NewLiveTimer(attendance.WithClock(func() time.Time { return fixed }))

	got := make(chan time.Time, 1)
	timer.Start(func(now time.Time) attendance.Tick {
		return attendance.Tick{At: now}
	}, func(tick attendance.Tick) { got <- tick.At })

	<-timer.Done()
	assert.Equal(t, fixed, <-got)
}
