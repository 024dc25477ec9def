// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package stats computes per-axis summary statistics over raw sample
// buffers. Standard deviations are population standard deviations
// (divide by N, not N-1): calibration works on the full collected set,
// not a sample of a larger population.
package stats

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ridelink-tech/attitude_engine/internal/imu"
)

// Stats holds per-axis mean and population standard deviation for the
// accelerometer, gyroscope and magnetometer, over Samples readings.
type Stats struct {
	AccelMean r3.Vec
	AccelStd  r3.Vec
	GyroMean  r3.Vec
	GyroStd   r3.Vec
	MagMean   r3.Vec
	MagStd    r3.Vec

	Samples int
}

// Compute runs the two-pass mean/variance formula over the full buffer.
// Callers must guard len(samples) >= 1.
func Compute(samples []imu.RawSample) Stats {
	n := float64(len(samples))

	var am, gm, mm r3.Vec
	for _, s := range samples {
		am = r3.Add(am, s.Accel())
		gm = r3.Add(gm, s.Gyro())
		mm = r3.Add(mm, s.Mag())
	}
	am = r3.Scale(1/n, am)
	gm = r3.Scale(1/n, gm)
	mm = r3.Scale(1/n, mm)

	var av, gv, mv r3.Vec
	for _, s := range samples {
		av = r3.Add(av, sq(r3.Sub(s.Accel(), am)))
		gv = r3.Add(gv, sq(r3.Sub(s.Gyro(), gm)))
		mv = r3.Add(mv, sq(r3.Sub(s.Mag(), mm)))
	}

	return Stats{
		AccelMean: am,
		AccelStd:  sqrt(r3.Scale(1/n, av)),
		GyroMean:  gm,
		GyroStd:   sqrt(r3.Scale(1/n, gv)),
		MagMean:   mm,
		MagStd:    sqrt(r3.Scale(1/n, mv)),
		Samples:   len(samples),
	}
}

// ComputeWindow computes statistics over the trailing window of at most
// k samples, for live stability checks during collection.
func ComputeWindow(samples []imu.RawSample, k int) Stats {
	if len(samples) > k {
		samples = samples[len(samples)-k:]
	}
	return Compute(samples)
}

// MaxAxis returns the largest component of v.
func MaxAxis(v r3.Vec) float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// MeanAxis returns the average of the three components of v.
func MeanAxis(v r3.Vec) float64 {
	return (v.X + v.Y + v.Z) / 3
}

func sq(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X * v.X, Y: v.Y * v.Y, Z: v.Z * v.Z}
}

func sqrt(v r3.Vec) r3.Vec {
	return r3.Vec{X: math.Sqrt(v.X), Y: math.Sqrt(v.Y), Z: math.Sqrt(v.Z)}
}
