// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import (
	"time"

	"github.com/ridelink-tech/attitude_engine/internal/imu"
)

// Sample generators for session tests. Each models a device behavior;
// i is the sample index within the run.

// stillDevice sits flat with gravity on +Z, a plausible Earth field and
// a small constant gyro bias.
func stillDevice(i int) imu.RawSample {
	return imu.RawSample{
		Az: 9.81,
		Gx: 0.001,
		Mx: 30, Mz: -20,
		TimestampMs: time.Now().UnixMilli(),
	}
}

// shakingDevice slams accel Z between 5 and 15: a standard deviation of
// 5, far beyond any stability bound.
func shakingDevice(i int) imu.RawSample {
	s := stillDevice(i)
	if i%2 == 0 {
		s.Az = 5
	} else {
		s.Az = 15
	}
	return s
}

// wobblyDevice wobbles accel Z by ±0.7: poor live stability, but inside
// the default 2.0 final threshold.
func wobblyDevice(i int) imu.RawSample {
	s := stillDevice(i)
	if i%2 == 0 {
		s.Az = 9.81 - 0.7
	} else {
		s.Az = 9.81 + 0.7
	}
	return s
}

// collinearFieldDevice is perfectly still but reports a magnetic field
// aligned with gravity, so no orientation can be extracted.
func collinearFieldDevice(i int) imu.RawSample {
	s := stillDevice(i)
	s.Mx = 0
	s.Mz = 50
	return s
}
