// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package quality scores a finished calibration capture: how close the
// measured gravity is to Earth gravity, how still the device was, and
// whether the magnetic field looks like the undisturbed Earth field.
package quality

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ridelink-tech/attitude_engine/internal/stats"
)

const (
	earthGravity = 9.81 // m/s²

	// gravityFullPenalty is the deviation from Earth gravity at which
	// the gravity score reaches zero.
	gravityFullPenalty = 2.0

	// Earth magnetic field magnitude bands, μT.
	magIdealMin = 25.0
	magIdealMax = 65.0
	magOkMin    = 20.0
	magOkMax    = 70.0

	acceptOverallFloor = 70.0
	acceptGravityFloor = 80.0
)

// Quality grades a calibration capture on a 0..100 scale per component.
// Acceptable is derived, never set independently: the capture must have
// passed the stability verdict, scored at least the overall floor, and
// met the stricter gravity-consistency floor.
type Quality struct {
	OverallScore       float64 `json:"overall_score"`
	StabilityScore     float64 `json:"stability_score"`
	MagneticFieldScore float64 `json:"magnetic_field_score"`
	GravityConsistency float64 `json:"gravity_consistency"`
	Acceptable         bool    `json:"acceptable"`
}

// Score grades the capture from its full-buffer statistics and the
// solved reference vectors. stable is the final stability verdict;
// stabilityThreshold is the same configured bound used for that verdict.
func Score(st stats.Stats, gravity, magField r3.Vec, stable bool, stabilityThreshold float64) Quality {
	gravityScore := 100 * (1 - math.Min(math.Abs(r3.Norm(gravity)-earthGravity)/gravityFullPenalty, 1))
	stabilityScore := 100 * (1 - math.Min(stats.MeanAxis(st.AccelStd)/stabilityThreshold, 1))

	magScore := 50.0
	switch magNorm := r3.Norm(magField); {
	case magNorm >= magIdealMin && magNorm <= magIdealMax:
		magScore = 100
	case magNorm >= magOkMin && magNorm <= magOkMax:
		magScore = 75
	}

	overall := (gravityScore + stabilityScore + magScore) / 3

	return Quality{
		OverallScore:       overall,
		StabilityScore:     stabilityScore,
		MagneticFieldScore: magScore,
		GravityConsistency: gravityScore,
		Acceptable:         stable && overall >= acceptOverallFloor && gravityScore >= acceptGravityFloor,
	}
}
