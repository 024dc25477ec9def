// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package orientation derives a mounting orientation from averaged
// gravity and magnetic-field reference vectors, and provides the
// quaternion/rotation-matrix conversions shared by the live fusion
// filter.
package orientation

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUndetermined is returned when the gravity and magnetic vectors are
// collinear or degenerate, so no unique orientation exists. Typical
// causes: a broken magnetometer, or mounting directly along the field.
var ErrUndetermined = errors.New("orientation: gravity and magnetic vectors do not span a plane")

// collinearEps bounds the norm of the down×mag cross product below
// which the two reference vectors are treated as collinear.
const collinearEps = 1e-6

// Solution is the orientation extracted from the two reference vectors.
// Angles are in degrees: pitch is rotation about the lateral axis,
// roll is the lean angle about the longitudinal axis, azimuth is the
// heading in [0,360).
type Solution struct {
	North r3.Vec
	East  r3.Vec
	Down  r3.Vec

	Matrix RotationMatrix
	Quat   Quaternion

	PitchDeg   float64
	RollDeg    float64
	AzimuthDeg float64
}

// Solve constructs an orthonormal device-to-world basis from the mean
// gravity vector and the mean magnetic-field vector:
//
//	down  = normalize(g)
//	east  = normalize(down × m)
//	north = east × down
//
// The rotation matrix takes {north, east, down} as rows, so it is
// orthonormal by construction.
func Solve(gravity, magField r3.Vec) (Solution, error) {
	if r3.Norm(gravity) < collinearEps || r3.Norm(magField) < collinearEps {
		return Solution{}, ErrUndetermined
	}

	down := r3.Unit(gravity)
	eastRaw := r3.Cross(down, r3.Unit(magField))
	if r3.Norm(eastRaw) < collinearEps {
		return Solution{}, ErrUndetermined
	}
	east := r3.Unit(eastRaw)
	north := r3.Cross(east, down)

	m := RotationMatrix{
		{north.X, north.Y, north.Z},
		{east.X, east.Y, east.Z},
		{down.X, down.Y, down.Z},
	}

	pitch, roll, azimuth := eulerFromMatrix(m)

	return Solution{
		North:      north,
		East:       east,
		Down:       down,
		Matrix:     m,
		Quat:       m.Quaternion(),
		PitchDeg:   pitch,
		RollDeg:    roll,
		AzimuthDeg: azimuth,
	}, nil
}

// eulerFromMatrix extracts pitch/roll/azimuth in degrees from a
// {north, east, down}-row matrix. The sign convention is fixed by the
// test fixtures in solver_test.go.
func eulerFromMatrix(m RotationMatrix) (pitch, roll, azimuth float64) {
	sp := -m[2][0]
	if sp > 1 {
		sp = 1
	} else if sp < -1 {
		sp = -1
	}

	pitch = math.Asin(sp) * 180 / math.Pi
	roll = math.Atan2(m[2][1], m[2][2]) * 180 / math.Pi
	azimuth = math.Atan2(m[1][0], m[0][0]) * 180 / math.Pi
	if azimuth < 0 {
		azimuth += 360
	}
	return pitch, roll, azimuth
}
