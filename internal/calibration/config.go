// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import (
	"fmt"
	"time"
)

// Defaults for SessionConfig fields left zero.
const (
	DefaultDuration           = 3 * time.Second
	DefaultMinSamples         = 50
	DefaultStabilityThreshold = 2.0
	DefaultMaxExtensions      = 3
)

// SessionConfig tunes a single calibration run.
type SessionConfig struct {
	// Duration is the initial collection window. It may grow by up to
	// MaxExtensions extension steps when the device is not steady.
	Duration time.Duration

	// MinSamples is the minimum buffer size required to process.
	MinSamples int

	// StabilityThreshold bounds the per-axis accel standard deviation
	// for the final stability verdict (m/s²).
	StabilityThreshold float64

	// MaxExtensions caps adaptive extension so collection always
	// terminates.
	MaxExtensions int
}

// DefaultSessionConfig returns the stock configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Duration:           DefaultDuration,
		MinSamples:         DefaultMinSamples,
		StabilityThreshold: DefaultStabilityThreshold,
		MaxExtensions:      DefaultMaxExtensions,
	}
}

func (c SessionConfig) validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.MinSamples <= 0 {
		return fmt.Errorf("%w: min samples must be positive, got %d", ErrInvalidConfig, c.MinSamples)
	}
	if c.StabilityThreshold <= 0 {
		return fmt.Errorf("%w: stability threshold must be positive, got %g", ErrInvalidConfig, c.StabilityThreshold)
	}
	if c.MaxExtensions < 0 {
		return fmt.Errorf("%w: max extensions must not be negative, got %d", ErrInvalidConfig, c.MaxExtensions)
	}
	return nil
}
