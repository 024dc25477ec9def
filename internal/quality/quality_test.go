// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ridelink-tech/attitude_engine/internal/stats"
)

func quietStats() stats.Stats {
	return stats.Stats{Samples: 100}
}

func TestScore_PerfectCapture(t *testing.T) {
	t.Parallel()

	q := Score(quietStats(), r3.Vec{Z: 9.81}, r3.Vec{X: 30, Z: -20}, true, 2.0)

	assert.InDelta(t, 100, q.GravityConsistency, 1e-9)
	assert.InDelta(t, 100, q.StabilityScore, 1e-9)
	assert.InDelta(t, 100, q.MagneticFieldScore, 1e-9)
	assert.InDelta(t, 100, q.OverallScore, 1e-9)
	assert.True(t, q.Acceptable)
}

func TestScore_GravityDeviation(t *testing.T) {
	t.Parallel()

	t.Run("half penalty at one unit off", func(t *testing.T) {
		t.Parallel()
		q := Score(quietStats(), r3.Vec{Z: 10.81}, r3.Vec{X: 30, Z: -20}, true, 2.0)
		assert.InDelta(t, 50, q.GravityConsistency, 1e-9)
		assert.False(t, q.Acceptable) // below the gravity floor
	})

	t.Run("zero at full penalty and beyond", func(t *testing.T) {
		t.Parallel()
		q := Score(quietStats(), r3.Vec{Z: 20}, r3.Vec{X: 30, Z: -20}, true, 2.0)
		assert.InDelta(t, 0, q.GravityConsistency, 1e-9)
		assert.False(t, q.Acceptable)
	})
}

func TestScore_StabilityComponent(t *testing.T) {
	t.Parallel()

	st := quietStats()
	st.AccelStd = r3.Vec{X: 1, Y: 1, Z: 1} // mean 1.0 against threshold 2.0

	q := Score(st, r3.Vec{Z: 9.81}, r3.Vec{X: 30, Z: -20}, true, 2.0)
	assert.InDelta(t, 50, q.StabilityScore, 1e-9)
}

func TestScore_MagneticBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mag  r3.Vec
		want float64
	}{
		{"ideal earth field", r3.Vec{X: 30, Z: -20}, 100},
		{"weak but plausible", r3.Vec{X: 22}, 75},
		{"strong but plausible", r3.Vec{X: 68}, 75},
		{"implausibly weak", r3.Vec{X: 10}, 50},
		{"implausibly strong", r3.Vec{X: 200}, 50},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := Score(quietStats(), r3.Vec{Z: 9.81}, tc.mag, true, 2.0)
			assert.InDelta(t, tc.want, q.MagneticFieldScore, 1e-9)
		})
	}
}

func TestScore_UnstableNeverAcceptable(t *testing.T) {
	t.Parallel()

	q := Score(quietStats(), r3.Vec{Z: 9.81}, r3.Vec{X: 30, Z: -20}, false, 2.0)
	assert.InDelta(t, 100, q.OverallScore, 1e-9)
	assert.False(t, q.Acceptable)
}

func TestScore_OverallIsMeanOfComponents(t *testing.T) {
	t.Parallel()

	st := quietStats()
	st.AccelStd = r3.Vec{X: 1, Y: 1, Z: 1}

	q := Score(st, r3.Vec{Z: 10.81}, r3.Vec{X: 10}, true, 2.0)
	assert.InDelta(t, (50.0+50.0+50.0)/3, q.OverallScore, 1e-9)
}
