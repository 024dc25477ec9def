// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package sensors

import (
	"math"
	"time"

	"github.com/ridelink-tech/attitude_engine/internal/imu"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a sample source that generates a nearly still
// device: gravity on +Z with a gentle wobble, near-zero rotation and a
// plausible Earth magnetic field. Useful for development without
// hardware attached.
func NewMockSource() imu.Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (imu.RawSample, error) {
	elapsed := time.Since(m.start).Seconds()

	wobble := 0.05 * math.Sin(elapsed*2)

	return imu.RawSample{
		Ax: wobble,
		Ay: 0.03 * math.Cos(elapsed*1.3),
		Az: 9.81 + 0.02*math.Sin(elapsed*3),

		Gx: 0.01 * math.Sin(elapsed),
		Gy: 0.01 * math.Cos(elapsed*0.7),
		Gz: 0,

		Mx: 30 + 0.2*math.Sin(elapsed*0.5),
		My: 0.2 * math.Cos(elapsed*0.5),
		Mz: -20,

		TimestampMs: time.Now().UnixMilli(),
	}, nil
}
