package mpris

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticFeed runs a real pump whose translate just unpacks the pushed
// value, so stream tests drive the estimator without a bus.
func syntheticFeed[T any]() (*Feed[T], func(T)) {
	f := &Feed[T]{
		out:  make(chan T, feedChanBuffer),
		raw:  make(chan *dbus.Signal, signalChanBuffer),
		quit: make(chan struct{}),
	}
	go f.pump(func(sig *dbus.Signal) (T, bool) {
		v, ok := sig.Body[0].(T)
		return v, ok
	})
	push := func(v T) { f.raw <- &dbus.Signal{Body: []interface{}{v}} }
	return f, push
}

func testStream(playback Playback, rate float64, pos time.Duration, interval time.Duration) (*PositionStream, func(float64), func(Playback), func(time.Duration)) {
	rates, pushRate := syntheticFeed[float64]()
	states, pushState := syntheticFeed[Playback]()
	seeks, pushSeek := syntheticFeed[time.Duration]()
	ps := newPositionStream(rates, states, seeks, playback, rate, pos, interval)
	return ps, pushRate, pushState, pushSeek
}

func TestEstimatorPlayPauseSeek(t *testing.T) {
	t0 := time.Unix(1000, 0)
	st := estimatorState{rate: 1.0, playback: PlaybackPaused, position: 10 * time.Second, lastTick: t0}

	// unpausing emits the unchanged position and starts the span
	pos, emit := st.playbackChanged(t0, PlaybackPlaying)
	require.True(t, emit)
	assert.Equal(t, 10*time.Second, pos)

	// two heartbeats advance by wall clock
	pos, emit = st.tick(t0.Add(1 * time.Second))
	require.True(t, emit)
	assert.Equal(t, 11*time.Second, pos)

	pos, emit = st.tick(t0.Add(2 * time.Second))
	require.True(t, emit)
	assert.Equal(t, 12*time.Second, pos)

	// pausing integrates the half-second tail and freezes
	pos, emit = st.playbackChanged(t0.Add(2500*time.Millisecond), PlaybackPaused)
	require.True(t, emit)
	assert.Equal(t, 12500*time.Millisecond, pos)

	// heartbeats while paused stay silent and move nothing
	_, emit = st.tick(t0.Add(4 * time.Second))
	assert.False(t, emit)
	_, emit = st.tick(t0.Add(5 * time.Second))
	assert.False(t, emit)
	assert.Equal(t, 12500*time.Millisecond, st.position)

	// a seek while paused still emits, verbatim
	pos, emit = st.seeked(t0.Add(10*time.Second), 3*time.Second)
	require.True(t, emit)
	assert.Equal(t, 3*time.Second, pos)
	assert.Equal(t, 3*time.Second, st.position)
}

func TestEstimatorRateChangeBoundary(t *testing.T) {
	t0 := time.Unix(2000, 0)
	st := estimatorState{rate: 1.0, playback: PlaybackPlaying, position: 0, lastTick: t0}

	pos, emit := st.tick(t0.Add(1 * time.Second))
	require.True(t, emit)
	assert.Equal(t, 1*time.Second, pos)

	// the span up to the change integrates at the old rate
	pos, emit = st.rateChanged(t0.Add(1500*time.Millisecond), 2.0)
	require.True(t, emit)
	assert.Equal(t, 1500*time.Millisecond, pos)
	assert.Equal(t, 2.0, st.rate)

	// from here on the new rate applies
	pos, emit = st.tick(t0.Add(2500 * time.Millisecond))
	require.True(t, emit)
	assert.Equal(t, 3500*time.Millisecond, pos)
}

func TestEstimatorZeroRateKeepsLastRate(t *testing.T) {
	t0 := time.Unix(3000, 0)
	st := estimatorState{rate: 1.5, playback: PlaybackPlaying, position: 0, lastTick: t0}

	pos, emit := st.rateChanged(t0.Add(2*time.Second), 0)
	require.True(t, emit, "the boundary integration still emits while playing")
	assert.Equal(t, 3*time.Second, pos)
	assert.Equal(t, 1.5, st.rate, "a zero rate must never be stored")

	pos, emit = st.tick(t0.Add(4 * time.Second))
	require.True(t, emit)
	assert.Equal(t, 6*time.Second, pos, "estimates keep advancing at the last non-zero rate")
}

func TestEstimatorNegativeRateClampsAtZero(t *testing.T) {
	t0 := time.Unix(4000, 0)
	st := estimatorState{rate: -2.0, playback: PlaybackPlaying, position: 1 * time.Second, lastTick: t0}

	pos, emit := st.tick(t0.Add(1 * time.Second))
	require.True(t, emit)
	assert.Equal(t, time.Duration(0), pos, "running past track start clamps at zero")
}

func TestEstimatorSilentTransitions(t *testing.T) {
	t0 := time.Unix(5000, 0)

	t.Run("rate change while paused", func(t *testing.T) {
		st := estimatorState{rate: 1.0, playback: PlaybackPaused, position: 7 * time.Second, lastTick: t0}
		_, emit := st.rateChanged(t0.Add(time.Second), 2.0)
		assert.False(t, emit)
		assert.Equal(t, 2.0, st.rate, "the rate is stored anyway")
		assert.Equal(t, 7*time.Second, st.position, "the frozen position does not move")
	})

	t.Run("paused to stopped", func(t *testing.T) {
		st := estimatorState{rate: 1.0, playback: PlaybackPaused, position: 7 * time.Second, lastTick: t0}
		_, emit := st.playbackChanged(t0.Add(time.Second), PlaybackStopped)
		assert.False(t, emit)
		assert.Equal(t, PlaybackStopped, st.playback)
	})

	t.Run("repeated playing state", func(t *testing.T) {
		st := estimatorState{rate: 1.0, playback: PlaybackPlaying, position: 0, lastTick: t0}
		_, emit := st.playbackChanged(t0.Add(time.Second), PlaybackPlaying)
		assert.False(t, emit)

		// no integration span was lost on the duplicate
		pos, emit := st.tick(t0.Add(2 * time.Second))
		require.True(t, emit)
		assert.Equal(t, 2*time.Second, pos)
	})
}

func TestEstimatorMonotonicWhilePlaying(t *testing.T) {
	t0 := time.Unix(6000, 0)
	st := estimatorState{rate: 1.25, playback: PlaybackPlaying, position: 0, lastTick: t0}

	last := time.Duration(-1)
	for i := 1; i <= 10; i++ {
		pos, emit := st.tick(t0.Add(time.Duration(i) * 700 * time.Millisecond))
		require.True(t, emit)
		assert.GreaterOrEqual(t, pos, last, "estimates must not run backwards between seeks")
		last = pos
	}
}

func TestPositionStreamPriorityOrder(t *testing.T) {
	ps, pushRate, pushState, pushSeek := testStream(PlaybackPaused, 1.0, 10*time.Second, time.Hour)
	defer ps.Close()

	// queue all three kinds before pulling once
	pushRate(2.0)
	pushState(PlaybackPlaying)
	pushSeek(5 * time.Second)
	// give the pumps a chance to deliver
	time.Sleep(50 * time.Millisecond)

	// the rate change is consumed first (silently, still paused), then the
	// playback change emits, and only the next pull sees the seek
	pos, ok := ps.Next()
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, pos)
	assert.Equal(t, 2.0, ps.st.rate)

	pos, ok = ps.Next()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, pos)
}

func TestPositionStreamHeartbeat(t *testing.T) {
	ps, _, _, _ := testStream(PlaybackPlaying, 1.0, 0, 50*time.Millisecond)
	defer ps.Close()

	first, ok := ps.Next()
	require.True(t, ok)
	assert.Greater(t, first, time.Duration(0))
	assert.Less(t, first, time.Second, "a heartbeat estimate tracks wall clock, roughly")

	second, ok := ps.Next()
	require.True(t, ok)
	assert.Greater(t, second, first)
}

func TestPositionStreamFrozenWhilePaused(t *testing.T) {
	ps, _, pushState, _ := testStream(PlaybackPaused, 1.0, 10*time.Second, 30*time.Millisecond)
	defer ps.Close()

	results := make(chan time.Duration, 1)
	go func() {
		if pos, ok := ps.Next(); ok {
			results <- pos
		}
	}()

	// several heartbeats pass; none may emit
	select {
	case pos := <-results:
		t.Fatalf("expected no emission while paused, got %v", pos)
	case <-time.After(150 * time.Millisecond):
	}

	pushState(PlaybackPlaying)
	select {
	case pos := <-results:
		assert.Equal(t, 10*time.Second, pos, "unpausing emits the frozen position")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the unpause emission")
	}
}

func TestPositionStreamEndsWithAnyFeed(t *testing.T) {
	ps, _, _, _ := testStream(PlaybackPaused, 1.0, 0, time.Hour)

	close(ps.rates.raw) // the rate feed ends

	pos, ok := ps.Next()
	assert.False(t, ok, "the stream ends as soon as one source feed ends")
	assert.Equal(t, time.Duration(0), pos)

	_, ok = ps.Next()
	assert.False(t, ok, "an ended stream stays ended")

	// the sibling feeds were torn down too
	select {
	case _, open := <-ps.states.C():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("sibling feed was not closed")
	}
}

func TestPositionStreamClose(t *testing.T) {
	ps, _, _, _ := testStream(PlaybackPaused, 1.0, 0, time.Hour)

	done := make(chan bool, 1)
	go func() {
		_, ok := ps.Next()
		done <- ok
	}()

	// let Next reach its blocking select
	time.Sleep(50 * time.Millisecond)
	ps.Close()

	select {
	case ok := <-done:
		assert.False(t, ok, "Close wakes a blocked Next")
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestPositionStreamGuardsZeroSnapshotRate(t *testing.T) {
	ps, _, _, _ := testStream(PlaybackPaused, 0, 0, time.Hour)
	defer ps.Close()

	assert.Equal(t, 1.0, ps.st.rate)
}
