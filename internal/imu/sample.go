// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package imu

import "gonum.org/v1/gonum/spatial/r3"

// RawSample is a single time-aligned accel/gyro/mag triple.
// Accel is in m/s², gyro in rad/s, mag in μT.
type RawSample struct {
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"`
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Mx float64 `json:"mx"`
	My float64 `json:"my"`
	Mz float64 `json:"mz"`

	TimestampMs int64 `json:"timestamp_ms"`
}

// Accel returns the accelerometer reading as a vector.
func (s RawSample) Accel() r3.Vec { return r3.Vec{X: s.Ax, Y: s.Ay, Z: s.Az} }

// Gyro returns the gyroscope reading as a vector.
func (s RawSample) Gyro() r3.Vec { return r3.Vec{X: s.Gx, Y: s.Gy, Z: s.Gz} }

// Mag returns the magnetometer reading as a vector.
func (s RawSample) Mag() r3.Vec { return r3.Vec{X: s.Mx, Y: s.My, Z: s.Mz} }

// Source is anything that can provide raw samples over time:
// a serial-attached IMU, a mock generator, a replay file.
type Source interface {
	Next() (RawSample, error)
}
