// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package stability classifies how physically still the device is,
// based on the spread of recent sensor readings.
package stability

import "github.com/ridelink-tech/attitude_engine/internal/stats"

// Level orders device stillness from best to worst. Unknown is reported
// only while too few samples exist to judge.
type Level int

const (
	Unknown Level = iota
	Excellent
	Good
	Poor
	Bad
)

func (l Level) String() string {
	switch l {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Poor:
		return "poor"
	case Bad:
		return "bad"
	default:
		return "unknown"
	}
}

// MarshalText lets Level serialize as its name in JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText. Anything
// unrecognized decodes as Unknown.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "excellent":
		*l = Excellent
	case "good":
		*l = Good
	case "poor":
		*l = Poor
	case "bad":
		*l = Bad
	default:
		*l = Unknown
	}
	return nil
}

// minClassifySamples is the floor below which live classification
// reports Unknown.
const minClassifySamples = 10

// Live thresholds on the max-over-axes standard deviations of the
// trailing window. Tuned for a bench-stable device; the final pass/fail
// bounds in IsStable are deliberately looser.
const (
	excellentAccelStd = 0.2
	excellentGyroStd  = 0.05
	goodAccelStd      = 0.5
	goodGyroStd       = 0.1
	poorAccelStd      = 1.0
	poorGyroStd       = 0.3
)

// finalGyroStd bounds the per-axis gyro standard deviation for the
// final verdict. Relaxed relative to the live thresholds so that
// handheld or vehicle-mounted collection can still pass.
const finalGyroStd = 0.5

// Classify grades the trailing-window statistics into a live Level.
func Classify(st stats.Stats) Level {
	if st.Samples < minClassifySamples {
		return Unknown
	}

	accelStd := stats.MaxAxis(st.AccelStd)
	gyroStd := stats.MaxAxis(st.GyroStd)

	switch {
	case accelStd < excellentAccelStd && gyroStd < excellentGyroStd:
		return Excellent
	case accelStd < goodAccelStd && gyroStd < goodGyroStd:
		return Good
	case accelStd < poorAccelStd && gyroStd < poorGyroStd:
		return Poor
	default:
		return Bad
	}
}

// IsStable is the final pass/fail verdict over the full collected
// buffer: every accel axis below accelThreshold and every gyro axis
// below the fixed relaxed bound.
func IsStable(st stats.Stats, accelThreshold float64) bool {
	if st.AccelStd.X >= accelThreshold || st.AccelStd.Y >= accelThreshold || st.AccelStd.Z >= accelThreshold {
		return false
	}
	if st.GyroStd.X >= finalGyroStd || st.GyroStd.Y >= finalGyroStd || st.GyroStd.Z >= finalGyroStd {
		return false
	}
	return true
}
