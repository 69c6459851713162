package room_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bananand/Vocly/internal/game/room"
)

func TestRoundTimerFires(t *testing.T) {
	fired := make(chan struct{})
	room.NewRoundTimer(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestRoundTimerStopPreventsFiring(t *testing.T) {
	var fired atomic.Bool
	rt := room.NewRoundTimer(20*time.Millisecond, func() { fired.Store(true) })
	rt.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestRoundTimerStopIdempotent(t *testing.T) {
	rt := room.NewRoundTimer(time.Hour, func() {})
	rt.Stop()
	rt.Stop()
	rt.Stop()
}

func TestRoundTimerConcurrentStop(t *testing.T) {
	var fired atomic.Int32
	rt := room.NewRoundTimer(10*time.Millisecond, func() { fired.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.Stop()
		}()
	}
	wg.Wait()

	time.Sleep(40 * time.Millisecond)
	// The callback may have won the race, but it can run at most once.
	assert.LessOrEqual(t, fired.Load(), int32(1))
}

func TestTimerTableExpiryRemovesEntry(t *testing.T) {
	tt := room.NewTimerTable()
	fired := make(chan struct{})

	tt.Start("AAAAA", 10*time.Millisecond, func() { close(fired) })
	assert.True(t, tt.Active("AAAAA"))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("table timer did not fire")
	}

	require.Eventually(t, func() bool {
		return !tt.Active("AAAAA")
	}, time.Second, 5*time.Millisecond)
}

func TestTimerTableStopCancels(t *testing.T) {
	tt := room.NewTimerTable()
	var fired atomic.Bool

	tt.Start("AAAAA", 20*time.Millisecond, func() { fired.Store(true) })
	tt.Stop("AAAAA")
	assert.False(t, tt.Active("AAAAA"))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestTimerTableStartReplacesTimer(t *testing.T) {
	tt := room.NewTimerTable()
	var old atomic.Bool
	replaced := make(chan struct{})

	tt.Start("AAAAA", 15*time.Millisecond, func() { old.Store(true) })
	tt.Start("AAAAA", 30*time.Millisecond, func() { close(replaced) })

	select {
	case <-replaced:
	case <-time.After(time.Second):
		t.Fatal("replacement timer did not fire")
	}
	assert.False(t, old.Load(), "replaced timer must not fire")
}

func TestTimerTableRearmFromCallback(t *testing.T) {
	tt := room.NewTimerTable()
	second := make(chan struct{})

	tt.Start("AAAAA", 10*time.Millisecond, func() {
		tt.Start("AAAAA", 10*time.Millisecond, func() { close(second) })
	})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("re-armed timer did not fire")
	}
}

func TestTimerTableIndependentCodes(t *testing.T) {
	tt := room.NewTimerTable()
	var fired atomic.Bool
	tt.Start("AAAAA", time.Hour, func() {})
	tt.Start("BBBBB", 15*time.Millisecond, func() { fired.Store(true) })

	tt.Stop("AAAAA")
	time.Sleep(50 * time.Millisecond)
	assert.True(t, fired.Load(), "stopping one code must not cancel another")
	assert.False(t, tt.Active("AAAAA"))
}
