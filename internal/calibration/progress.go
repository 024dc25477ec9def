// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import (
	"fmt"

	"github.com/ridelink-tech/attitude_engine/internal/stability"
)

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Collecting
	Processing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets State serialize as its name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "collecting":
		*s = Collecting
	case "processing":
		*s = Processing
	case "completed":
		*s = Completed
	case "failed":
		*s = Failed
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// Progress is a point-in-time snapshot of a running session, delivered
// on the session's progress channel. Delivery is drop-oldest: a slow
// consumer sees fewer snapshots but always eventually the terminal one.
type Progress struct {
	State           State           `json:"state"`
	PercentComplete float64         `json:"percent_complete"`
	Message         string          `json:"message"`
	RemainingMs     int64           `json:"remaining_ms"`
	Stability       stability.Level `json:"stability"`
	CanExtend       bool            `json:"can_extend"`
}
