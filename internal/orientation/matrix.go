// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package orientation

import "math"

// RotationMatrix is a row-major 3×3 rotation matrix mapping device
// coordinates into world (north, east, down) coordinates.
type RotationMatrix [3][3]float64

// IdentityMatrix returns the no-rotation matrix.
func IdentityMatrix() RotationMatrix {
	return RotationMatrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Quaternion converts m to a quaternion via the trace-based method:
// component magnitudes from the diagonal, signs resolved from the
// asymmetric off-diagonal differences.
func (m RotationMatrix) Quaternion() Quaternion {
	w := 0.5 * math.Sqrt(math.Max(0, 1+m[0][0]+m[1][1]+m[2][2]))
	x := 0.5 * math.Sqrt(math.Max(0, 1+m[0][0]-m[1][1]-m[2][2]))
	y := 0.5 * math.Sqrt(math.Max(0, 1-m[0][0]+m[1][1]-m[2][2]))
	z := 0.5 * math.Sqrt(math.Max(0, 1-m[0][0]-m[1][1]+m[2][2]))

	x = math.Copysign(x, m[2][1]-m[1][2])
	y = math.Copysign(y, m[0][2]-m[2][0])
	z = math.Copysign(z, m[1][0]-m[0][1])

	return NewQuaternion(w, x, y, z)
}

// IsOrthonormal reports whether rows of m are unit length and mutually
// orthogonal within tol.
func (m RotationMatrix) IsOrthonormal(tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			dot := m[i][0]*m[j][0] + m[i][1]*m[j][1] + m[i][2]*m[j][2]
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > tol {
				return false
			}
		}
	}
	return true
}
