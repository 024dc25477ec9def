// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package orientation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSolve_FlatDevice(t *testing.T) {
	t.Parallel()

	// Device lying flat, x axis pointing at magnetic north: gravity on
	// +Z, field in the x/z plane. This must resolve to zero rotation.
	sol, err := Solve(r3.Vec{Z: 9.81}, r3.Vec{X: 30, Z: -20})
	require.NoError(t, err)

	assert.InDelta(t, 0, sol.PitchDeg, 1e-9)
	assert.InDelta(t, 0, sol.RollDeg, 1e-9)
	assert.InDelta(t, 0, sol.AzimuthDeg, 1e-9)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, sol.Matrix[i][j], 1e-9)
		}
	}
	assert.InDelta(t, 1, sol.Quat.W, 1e-9)
}

func TestSolve_RotatedAboutVertical(t *testing.T) {
	t.Parallel()

	// Field's horizontal component along device +Y instead of +X.
	sol, err := Solve(r3.Vec{Z: 9.81}, r3.Vec{Y: 30, Z: -20})
	require.NoError(t, err)

	assert.InDelta(t, 0, sol.PitchDeg, 1e-9)
	assert.InDelta(t, 0, sol.RollDeg, 1e-9)
	assert.InDelta(t, 270, sol.AzimuthDeg, 1e-9)
}

func TestSolve_PitchedDevice(t *testing.T) {
	t.Parallel()

	// Gravity split equally between +X and +Z: a 45 degree pitch.
	g := 9.81 / math.Sqrt2
	sol, err := Solve(r3.Vec{X: g, Z: g}, r3.Vec{Y: 30})
	require.NoError(t, err)

	assert.InDelta(t, -45, sol.PitchDeg, 1e-9)
	assert.InDelta(t, 0, sol.RollDeg, 1e-9)
}

func TestSolve_BasisProperties(t *testing.T) {
	t.Parallel()

	sol, err := Solve(r3.Vec{X: 1.2, Y: -3.4, Z: 8.9}, r3.Vec{X: 12, Y: -28, Z: -31})
	require.NoError(t, err)

	// Right-handed orthonormal basis.
	assert.True(t, sol.Matrix.IsOrthonormal(1e-9))
	assert.InDelta(t, 1, r3.Norm(sol.North), 1e-9)
	assert.InDelta(t, 1, r3.Norm(sol.East), 1e-9)
	assert.InDelta(t, 1, r3.Norm(sol.Down), 1e-9)
	assert.InDelta(t, 0, r3.Dot(sol.North, sol.East), 1e-9)
	assert.InDelta(t, 0, r3.Dot(sol.North, sol.Down), 1e-9)
	assert.InDelta(t, 0, r3.Dot(sol.East, sol.Down), 1e-9)

	// Down aligns with measured gravity.
	assert.InDelta(t, 1, r3.Dot(sol.Down, r3.Unit(r3.Vec{X: 1.2, Y: -3.4, Z: 8.9})), 1e-9)

	// Azimuth stays in [0,360).
	assert.GreaterOrEqual(t, sol.AzimuthDeg, 0.0)
	assert.Less(t, sol.AzimuthDeg, 360.0)

	// Quaternion and matrix describe the same rotation.
	qm := sol.Quat.Matrix()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, sol.Matrix[i][j], qm[i][j], 1e-9)
		}
	}
}

func TestSolve_Degenerate(t *testing.T) {
	t.Parallel()

	t.Run("collinear vectors", func(t *testing.T) {
		t.Parallel()
		_, err := Solve(r3.Vec{Z: 9.81}, r3.Vec{Z: 50})
		assert.ErrorIs(t, err, ErrUndetermined)
	})

	t.Run("nearly collinear vectors", func(t *testing.T) {
		t.Parallel()
		_, err := Solve(r3.Vec{Z: 9.81}, r3.Vec{X: 1e-9, Z: 50})
		assert.ErrorIs(t, err, ErrUndetermined)
	})

	t.Run("zero gravity", func(t *testing.T) {
		t.Parallel()
		_, err := Solve(r3.Vec{}, r3.Vec{X: 30})
		assert.ErrorIs(t, err, ErrUndetermined)
	})

	t.Run("zero magnetic field", func(t *testing.T) {
		t.Parallel()
		_, err := Solve(r3.Vec{Z: 9.81}, r3.Vec{})
		assert.ErrorIs(t, err, ErrUndetermined)
	})
}
