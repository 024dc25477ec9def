// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import "errors"

// All failures are local and recoverable: the session returns to a
// clean Failed or Idle state and a fresh Start always works.
var (
	// ErrInvalidConfig rejects a zero duration, zero minimum sample
	// count or non-positive stability threshold at Start.
	ErrInvalidConfig = errors.New("calibration: invalid session config")

	// ErrAlreadyRunning is advisory: Start was called while a session
	// was collecting or processing. State is left untouched.
	ErrAlreadyRunning = errors.New("calibration: session already running")

	// ErrInsufficientSamples means fewer than the configured minimum
	// were collected by the time collection ended.
	ErrInsufficientSamples = errors.New("calibration: insufficient samples")

	// ErrDeviceUnstable means the final stability or quality check
	// failed; the device moved too much during collection.
	ErrDeviceUnstable = errors.New("calibration: device unstable during collection")

	// ErrOrientationUndetermined means the gravity and magnetic
	// reference vectors were collinear or degenerate.
	ErrOrientationUndetermined = errors.New("calibration: orientation undetermined")
)
