// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package orientation

import "math"

// Quaternion is a unit-norm rotation quaternion. Every constructor and
// public operation returns a normalized value; a zero-norm input
// normalizes to the identity.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity returns the no-rotation quaternion (1,0,0,0).
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// NewQuaternion builds a normalized quaternion from raw components.
func NewQuaternion(w, x, y, z float64) Quaternion {
	return Quaternion{W: w, X: x, Y: y, Z: z}.Normalize()
}

// Norm returns the Euclidean norm of q.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize scales q to unit norm. A degenerate (near-zero) quaternion
// becomes the identity rather than propagating a division by zero.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n < 1e-12 {
		return Identity()
	}
	inv := 1 / n
	return Quaternion{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// Matrix returns the rotation matrix representing the same rotation.
func (q Quaternion) Matrix() RotationMatrix {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return RotationMatrix{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}
