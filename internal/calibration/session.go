// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package calibration runs the one-shot mounting-orientation
// calibration: a timed, adaptively extending collection window over the
// raw sample stream, followed by statistics, stability and quality
// checks, and orientation extraction.
package calibration

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ridelink-tech/attitude_engine/internal/imu"
	"github.com/ridelink-tech/attitude_engine/internal/orientation"
	"github.com/ridelink-tech/attitude_engine/internal/quality"
	"github.com/ridelink-tech/attitude_engine/internal/stability"
	"github.com/ridelink-tech/attitude_engine/internal/stats"
)

const (
	// tickInterval is the period of the progress/extension check loop.
	tickInterval = 100 * time.Millisecond

	// extensionStep is the fixed amount the collection window grows by
	// when the device is not steady at the deadline.
	extensionStep = time.Second

	// liveWindow is the trailing sample count used for the live
	// stability classification.
	liveWindow = 10

	// progressBuffer bounds the progress channel; delivery is
	// drop-oldest so a slow consumer never blocks the tick loop.
	progressBuffer = 16
)

// Session owns one calibration run at a time: the sample buffer, the
// timing state and the eventual Result. Safe for concurrent use by a
// sample producer and the periodic tick loop.
type Session struct {
	mu sync.Mutex

	cfg        SessionConfig
	state      State
	samples    []imu.RawSample
	live       stability.Level
	startedAt  time.Time
	target     time.Duration
	extensions int

	result     *Result
	failReason string

	progressCh chan Progress
	stopCh     chan struct{}
	tick       time.Duration
	closed     bool
}

// NewSession returns an idle session with no held result.
func NewSession() *Session {
	return &Session{
		progressCh: make(chan Progress, progressBuffer),
		tick:       tickInterval,
	}
}

// Progress returns the snapshot stream for this session. The channel
// is owned by the session and survives across runs; it is closed only
// by Close.
func (s *Session) Progress() <-chan Progress {
	return s.progressCh
}

// Start begins a new collection run. Legal only from Idle or Failed;
// otherwise ErrAlreadyRunning is returned and state is untouched.
func (s *Session) Start(cfg SessionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle && s.state != Failed {
		return ErrAlreadyRunning
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	if s.stopCh != nil {
		close(s.stopCh)
	}
	s.stopCh = make(chan struct{})

	s.cfg = cfg
	s.samples = s.samples[:0]
	s.live = stability.Unknown
	s.startedAt = time.Now()
	s.target = cfg.Duration
	s.extensions = 0
	s.result = nil
	s.failReason = ""
	s.state = Collecting

	go s.run(s.stopCh)

	s.emitLocked(Progress{
		State:       Collecting,
		Message:     "collecting samples, keep the device still",
		RemainingMs: s.target.Milliseconds(),
		Stability:   s.live,
		CanExtend:   s.extensions < s.cfg.MaxExtensions,
	})
	log.Printf("calibration: started, duration=%v minSamples=%d", cfg.Duration, cfg.MinSamples)
	return nil
}

// AddSample ingests one raw sample. Samples are accepted only while
// collecting; anything else is silently dropped so a free-running
// sensor callback needs no state checks. The sample is copied into the
// session-owned buffer.
func (s *Session) AddSample(sample imu.RawSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Collecting {
		return
	}
	s.samples = append(s.samples, sample)
	s.live = stability.Classify(stats.ComputeWindow(s.samples, liveWindow))
}

// Cancel aborts a run in progress: buffers and timers are cleared and
// the session returns to Idle. Calling Cancel on an idle or terminal
// session is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Collecting && s.state != Processing {
		return
	}
	s.stopLoopLocked()
	s.resetLocked()
	s.state = Idle
	log.Printf("calibration: cancelled")
}

// Clear drops any held result and returns the session to Idle from any
// state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLoopLocked()
	s.resetLocked()
	s.result = nil
	s.failReason = ""
	s.state = Idle
}

// Close cancels any run in progress and closes the progress channel.
// The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopLoopLocked()
	s.resetLocked()
	s.state = Idle
	s.closed = true
	close(s.progressCh)
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the held calibration result, if the last run
// completed.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// FailReason returns the human-readable reason of the last failure, or
// "" when the session has not failed.
func (s *Session) FailReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failReason
}

// run is the periodic tick loop. It is the only place that mutates
// timing and extension state, and it exits on its own once the session
// leaves Collecting.
func (s *Session) run(stop chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if s.onTick() {
				return
			}
		}
	}
}

// onTick emits one progress snapshot and handles the collection
// deadline. Returns true when the loop should terminate.
func (s *Session) onTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Collecting {
		return true
	}

	elapsed := time.Since(s.startedAt)
	if elapsed >= s.target {
		if s.live == stability.Poor && s.extensions < s.cfg.MaxExtensions {
			s.target += extensionStep
			s.extensions++
			log.Printf("calibration: device not steady, extending collection to %v (%d/%d)",
				s.target, s.extensions, s.cfg.MaxExtensions)
			s.emitLocked(Progress{
				State:           Collecting,
				PercentComplete: percent(elapsed, s.target),
				Message:         "device not steady, extending collection",
				RemainingMs:     remainingMs(elapsed, s.target),
				Stability:       s.live,
				CanExtend:       s.extensions < s.cfg.MaxExtensions,
			})
			return false
		}
		s.processLocked(elapsed)
		return true
	}

	s.emitLocked(Progress{
		State:           Collecting,
		PercentComplete: percent(elapsed, s.target),
		Message:         fmt.Sprintf("collecting samples (%d so far)", len(s.samples)),
		RemainingMs:     remainingMs(elapsed, s.target),
		Stability:       s.live,
		CanExtend:       s.extensions < s.cfg.MaxExtensions,
	})
	return false
}

// processLocked turns the collected buffer into a Result or a failure.
// Runs synchronously under the session lock; the work is O(samples)
// plus one matrix/quaternion conversion, so it is bounded.
func (s *Session) processLocked(elapsed time.Duration) {
	s.state = Processing
	s.emitLocked(Progress{
		State:           Processing,
		PercentComplete: 100,
		Message:         "processing samples",
		Stability:       s.live,
	})

	if len(s.samples) < s.cfg.MinSamples {
		s.failLocked(fmt.Errorf("%w: got %d, need %d", ErrInsufficientSamples, len(s.samples), s.cfg.MinSamples))
		return
	}

	st := stats.Compute(s.samples)

	if !stability.IsStable(st, s.cfg.StabilityThreshold) {
		s.failLocked(fmt.Errorf("%w: accel std (%.3f, %.3f, %.3f), gyro std (%.3f, %.3f, %.3f)",
			ErrDeviceUnstable,
			st.AccelStd.X, st.AccelStd.Y, st.AccelStd.Z,
			st.GyroStd.X, st.GyroStd.Y, st.GyroStd.Z))
		return
	}

	sol, err := orientation.Solve(st.AccelMean, st.MagMean)
	if err != nil {
		s.failLocked(fmt.Errorf("%w: %v", ErrOrientationUndetermined, err))
		return
	}

	q := quality.Score(st, st.AccelMean, st.MagMean, true, s.cfg.StabilityThreshold)
	if !q.Acceptable {
		s.failLocked(fmt.Errorf("%w: quality too low (overall %.1f, gravity %.1f)",
			ErrDeviceUnstable, q.OverallScore, q.GravityConsistency))
		return
	}

	s.result = &Result{
		GravityRef:  st.AccelMean,
		MagRef:      st.MagMean,
		Matrix:      sol.Matrix,
		Quat:        sol.Quat,
		PitchDeg:    sol.PitchDeg,
		RollDeg:     sol.RollDeg,
		AzimuthDeg:  sol.AzimuthDeg,
		GyroBias:    st.GyroMean,
		Quality:     q,
		CollectedAt: s.startedAt,
		Duration:    elapsed,
		Samples:     st.Samples,
	}
	s.samples = nil
	s.state = Completed
	s.emitLocked(Progress{
		State:           Completed,
		PercentComplete: 100,
		Message: fmt.Sprintf("calibration complete: pitch %.1f°, roll %.1f°, azimuth %.1f° (quality %.0f)",
			s.result.PitchDeg, s.result.RollDeg, s.result.AzimuthDeg, q.OverallScore),
		Stability: s.live,
	})
	log.Printf("calibration: completed with %d samples, overall quality %.1f", s.result.Samples, q.OverallScore)
}

// failLocked enters Failed: the reason is retained, buffers are not.
func (s *Session) failLocked(err error) {
	s.failReason = err.Error()
	s.samples = nil
	s.state = Failed
	s.emitLocked(Progress{
		State:           Failed,
		PercentComplete: 100,
		Message:         s.failReason,
		Stability:       s.live,
	})
	log.Printf("calibration: failed: %v", err)
}

func (s *Session) resetLocked() {
	s.samples = nil
	s.live = stability.Unknown
	s.startedAt = time.Time{}
	s.target = 0
	s.extensions = 0
}

func (s *Session) stopLoopLocked() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// emitLocked delivers a snapshot without ever blocking: when the
// channel is full the oldest snapshot is dropped, so consumers always
// converge on the latest (and eventually the terminal) state.
func (s *Session) emitLocked(p Progress) {
	if s.closed {
		return
	}
	select {
	case s.progressCh <- p:
	default:
		select {
		case <-s.progressCh:
		default:
		}
		select {
		case s.progressCh <- p:
		default:
		}
	}
}

func percent(elapsed, target time.Duration) float64 {
	if target <= 0 {
		return 0
	}
	p := 100 * float64(elapsed) / float64(target)
	if p > 100 {
		p = 100
	}
	return p
}

func remainingMs(elapsed, target time.Duration) int64 {
	r := target - elapsed
	if r < 0 {
		r = 0
	}
	return r.Milliseconds()
}
