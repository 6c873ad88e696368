// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"time"
)

// heartbeatInterval paces fresh estimates while the player is playing.
const heartbeatInterval = time.Second

// estimatorState is the position bookkeeping between emissions: the last
// known rate (never zero), the transport state, the estimated position and
// the wall-clock instant it was computed at.
type estimatorState struct {
	rate     float64
	playback Playback
	position time.Duration
	lastTick time.Time
}

// integrate advances the estimate by the wall-clock span since lastTick,
// scaled by the current rate. Negative rates can run past track start, so
// the result clamps at zero.
func (s *estimatorState) integrate(now time.Time) {
	elapsed := now.Sub(s.lastTick)
	s.position += time.Duration(float64(elapsed) * s.rate)
	if s.position < 0 {
		s.position = 0
	}
	s.lastTick = now
}

// rateChanged folds a rate update into the state. While playing, the span
// up to now is integrated at the old rate first and the new estimate is
// emitted. A zero rate is never stored; the last non-zero rate keeps
// driving the estimate.
func (s *estimatorState) rateChanged(now time.Time, rate float64) (time.Duration, bool) {
	playing := s.playback == PlaybackPlaying
	if playing {
		s.integrate(now)
	}
	if rate != 0 {
		s.rate = rate
	}
	if playing {
		return s.position, true
	}
	return 0, false
}

// playbackChanged folds a transport-state update into the state. Entering
// play restarts the integration span and emits the unchanged position;
// leaving play integrates the tail and emits the frozen position. Changes
// between the two non-playing states are stored silently.
func (s *estimatorState) playbackChanged(now time.Time, pb Playback) (time.Duration, bool) {
	was := s.playback
	s.playback = pb
	if was == PlaybackPlaying && pb != PlaybackPlaying {
		s.integrate(now)
		return s.position, true
	}
	if was != PlaybackPlaying && pb == PlaybackPlaying {
		s.lastTick = now
		return s.position, true
	}
	return 0, false
}

// seeked adopts the player-reported position verbatim and always emits,
// playing or not.
func (s *estimatorState) seeked(now time.Time, pos time.Duration) (time.Duration, bool) {
	s.position = pos
	s.lastTick = now
	return s.position, true
}

// tick integrates and emits while playing. While paused or stopped the
// heartbeat is swallowed and the position stays frozen.
func (s *estimatorState) tick(now time.Time) (time.Duration, bool) {
	if s.playback != PlaybackPlaying {
		return 0, false
	}
	s.integrate(now)
	return s.position, true
}

// PositionStream is a lazy sequence of estimated track positions, combining
// the player's rate and playback-state changes, its seek events and a
// heartbeat. It is pull-driven: the state machine only advances inside
// Next, in the caller's goroutine. One consumer at a time.
type PositionStream struct {
	rates    *Feed[float64]
	states   *Feed[Playback]
	seeks    *Feed[time.Duration]
	st       estimatorState
	timer    *time.Timer
	interval time.Duration
	done     bool
}

// SubscribePosition subscribes the three source feeds, then snapshots the
// player's state to seed the estimator. Subscribing first means changes
// racing the snapshot are queued, not lost. Players that fail the optional
// rate and position reads get defaults; a failed playback-state read kills
// the subscription.
func (p *Player) SubscribePosition() (*PositionStream, error) {
	rates, err := SubscribeChange(p, Rate)
	if err != nil {
		return nil, err
	}
	states, err := SubscribeChange(p, PlaybackStatus)
	if err != nil {
		rates.Close()
		return nil, err
	}
	seeks, err := SubscribeEvent(p, Seeked)
	if err != nil {
		rates.Close()
		states.Close()
		return nil, err
	}

	playback, err := Get(p, PlaybackStatus)
	if err != nil {
		rates.Close()
		states.Close()
		seeks.Close()
		return nil, err
	}
	rate, err := Get(p, Rate)
	if err != nil {
		p.logger.PrintError("position snapshot Rate", err)
		rate = 1.0
	}
	pos, err := Get(p, TrackPosition)
	if err != nil {
		p.logger.PrintError("position snapshot Position", err)
		pos = 0
	}

	return newPositionStream(rates, states, seeks, playback, rate, pos, heartbeatInterval), nil
}

func newPositionStream(rates *Feed[float64], states *Feed[Playback], seeks *Feed[time.Duration],
	playback Playback, rate float64, pos time.Duration, interval time.Duration) *PositionStream {
	if rate == 0 {
		rate = 1.0
	}
	return &PositionStream{
		rates:  rates,
		states: states,
		seeks:  seeks,
		st: estimatorState{
			rate:     rate,
			playback: playback,
			position: pos,
			lastTick: time.Now(),
		},
		timer:    time.NewTimer(interval),
		interval: interval,
	}
}

// Next blocks until the estimator emits the next position estimate. It
// returns false once the stream has ended: after Close, or as soon as any
// of the three source feeds ends. An ended stream stays ended.
//
// Queued updates are consumed in a fixed order: rate changes first, then
// playback-state changes, then seeks, then the heartbeat.
func (ps *PositionStream) Next() (time.Duration, bool) {
	if ps.done {
		return 0, false
	}
	for {
		select {
		case rate, ok := <-ps.rates.C():
			if !ok {
				return ps.end()
			}
			if pos, emit := ps.st.rateChanged(time.Now(), rate); emit {
				ps.rearm()
				return pos, true
			}
			continue
		default:
		}
		select {
		case pb, ok := <-ps.states.C():
			if !ok {
				return ps.end()
			}
			if pos, emit := ps.st.playbackChanged(time.Now(), pb); emit {
				ps.rearm()
				return pos, true
			}
			continue
		default:
		}
		select {
		case target, ok := <-ps.seeks.C():
			if !ok {
				return ps.end()
			}
			pos, _ := ps.st.seeked(time.Now(), target)
			ps.rearm()
			return pos, true
		default:
		}

		select {
		case rate, ok := <-ps.rates.C():
			if !ok {
				return ps.end()
			}
			if pos, emit := ps.st.rateChanged(time.Now(), rate); emit {
				ps.rearm()
				return pos, true
			}
		case pb, ok := <-ps.states.C():
			if !ok {
				return ps.end()
			}
			if pos, emit := ps.st.playbackChanged(time.Now(), pb); emit {
				ps.rearm()
				return pos, true
			}
		case target, ok := <-ps.seeks.C():
			if !ok {
				return ps.end()
			}
			pos, _ := ps.st.seeked(time.Now(), target)
			ps.rearm()
			return pos, true
		case now := <-ps.timer.C:
			if pos, emit := ps.st.tick(now); emit {
				ps.timer.Reset(ps.interval)
				return pos, true
			}
			ps.timer.Reset(ps.interval)
		}
	}
}

// Close tears down the source feeds. A Next blocked in another goroutine
// wakes up and returns false.
func (ps *PositionStream) Close() {
	ps.rates.Close()
	ps.states.Close()
	ps.seeks.Close()
}

func (ps *PositionStream) end() (time.Duration, bool) {
	ps.done = true
	ps.Close()
	ps.timer.Stop()
	return 0, false
}

// rearm restarts the heartbeat so the next estimate is at most one
// interval after the one just emitted. Next runs single-goroutine, so a
// fired-and-drained timer just resets.
func (ps *PositionStream) rearm() {
	if !ps.timer.Stop() {
		select {
		case <-ps.timer.C:
		default:
		}
	}
	ps.timer.Reset(ps.interval)
}
