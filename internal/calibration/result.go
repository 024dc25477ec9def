// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ridelink-tech/attitude_engine/internal/orientation"
	"github.com/ridelink-tech/attitude_engine/internal/quality"
)

// headerVersion tags the key/value text representation of a Result.
const headerVersion = 1

// Result is the immutable outcome of a successful calibration session.
// It is created exactly once per completed session and its quality is
// always acceptable; unacceptable captures surface as session failures
// instead.
type Result struct {
	GravityRef r3.Vec                      `json:"gravity_ref"`
	MagRef     r3.Vec                      `json:"mag_ref"`
	Matrix     orientation.RotationMatrix  `json:"matrix"`
	Quat       orientation.Quaternion      `json:"quat"`
	PitchDeg   float64                     `json:"pitch_deg"`
	RollDeg    float64                     `json:"roll_deg"`
	AzimuthDeg float64                     `json:"azimuth_deg"`
	GyroBias   r3.Vec                      `json:"gyro_bias"`
	Quality    quality.Quality             `json:"quality"`

	CollectedAt time.Time     `json:"collected_at"`
	Duration    time.Duration `json:"duration"`
	Samples     int           `json:"samples"`
}

// EncodeHeader renders the result as a key=value text block, suitable
// for embedding as a comment header in an external log file. The block
// round-trips through DecodeHeader.
func (r Result) EncodeHeader() string {
	var b strings.Builder
	fmt.Fprintf(&b, "calibration_version=%d\n", headerVersion)
	fmt.Fprintf(&b, "calibrated_at=%s\n", r.CollectedAt.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "duration_ms=%d\n", r.Duration.Milliseconds())
	fmt.Fprintf(&b, "samples=%d\n", r.Samples)
	fmt.Fprintf(&b, "gravity_ref=%.6f %.6f %.6f\n", r.GravityRef.X, r.GravityRef.Y, r.GravityRef.Z)
	fmt.Fprintf(&b, "mag_ref=%.6f %.6f %.6f\n", r.MagRef.X, r.MagRef.Y, r.MagRef.Z)
	fmt.Fprintf(&b, "gyro_bias=%.6f %.6f %.6f\n", r.GyroBias.X, r.GyroBias.Y, r.GyroBias.Z)
	fmt.Fprintf(&b, "quat=%.6f %.6f %.6f %.6f\n", r.Quat.W, r.Quat.X, r.Quat.Y, r.Quat.Z)
	fmt.Fprintf(&b, "matrix=%.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f\n",
		r.Matrix[0][0], r.Matrix[0][1], r.Matrix[0][2],
		r.Matrix[1][0], r.Matrix[1][1], r.Matrix[1][2],
		r.Matrix[2][0], r.Matrix[2][1], r.Matrix[2][2])
	fmt.Fprintf(&b, "pitch_deg=%.4f\n", r.PitchDeg)
	fmt.Fprintf(&b, "roll_deg=%.4f\n", r.RollDeg)
	fmt.Fprintf(&b, "azimuth_deg=%.4f\n", r.AzimuthDeg)
	fmt.Fprintf(&b, "quality_overall=%.2f\n", r.Quality.OverallScore)
	fmt.Fprintf(&b, "quality_stability=%.2f\n", r.Quality.StabilityScore)
	fmt.Fprintf(&b, "quality_magnetic=%.2f\n", r.Quality.MagneticFieldScore)
	fmt.Fprintf(&b, "quality_gravity=%.2f\n", r.Quality.GravityConsistency)
	fmt.Fprintf(&b, "quality_acceptable=%t\n", r.Quality.Acceptable)
	return b.String()
}

// DecodeHeader parses a key=value text block produced by EncodeHeader.
// Unknown keys are ignored so logger-side additions stay compatible.
func DecodeHeader(text string) (Result, error) {
	var r Result

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return Result{}, fmt.Errorf("calibration header line %d: malformed %q", lineNum, line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var err error
		switch key {
		case "calibration_version":
			var v int
			if _, err = fmt.Sscanf(value, "%d", &v); err == nil && v != headerVersion {
				return Result{}, fmt.Errorf("calibration header: unsupported version %d", v)
			}
		case "calibrated_at":
			r.CollectedAt, err = time.Parse(time.RFC3339Nano, value)
		case "duration_ms":
			var ms int64
			if _, err = fmt.Sscanf(value, "%d", &ms); err == nil {
				r.Duration = time.Duration(ms) * time.Millisecond
			}
		case "samples":
			_, err = fmt.Sscanf(value, "%d", &r.Samples)
		case "gravity_ref":
			_, err = fmt.Sscanf(value, "%f %f %f", &r.GravityRef.X, &r.GravityRef.Y, &r.GravityRef.Z)
		case "mag_ref":
			_, err = fmt.Sscanf(value, "%f %f %f", &r.MagRef.X, &r.MagRef.Y, &r.MagRef.Z)
		case "gyro_bias":
			_, err = fmt.Sscanf(value, "%f %f %f", &r.GyroBias.X, &r.GyroBias.Y, &r.GyroBias.Z)
		case "quat":
			_, err = fmt.Sscanf(value, "%f %f %f %f", &r.Quat.W, &r.Quat.X, &r.Quat.Y, &r.Quat.Z)
		case "matrix":
			_, err = fmt.Sscanf(value, "%f %f %f %f %f %f %f %f %f",
				&r.Matrix[0][0], &r.Matrix[0][1], &r.Matrix[0][2],
				&r.Matrix[1][0], &r.Matrix[1][1], &r.Matrix[1][2],
				&r.Matrix[2][0], &r.Matrix[2][1], &r.Matrix[2][2])
		case "pitch_deg":
			_, err = fmt.Sscanf(value, "%f", &r.PitchDeg)
		case "roll_deg":
			_, err = fmt.Sscanf(value, "%f", &r.RollDeg)
		case "azimuth_deg":
			_, err = fmt.Sscanf(value, "%f", &r.AzimuthDeg)
		case "quality_overall":
			_, err = fmt.Sscanf(value, "%f", &r.Quality.OverallScore)
		case "quality_stability":
			_, err = fmt.Sscanf(value, "%f", &r.Quality.StabilityScore)
		case "quality_magnetic":
			_, err = fmt.Sscanf(value, "%f", &r.Quality.MagneticFieldScore)
		case "quality_gravity":
			_, err = fmt.Sscanf(value, "%f", &r.Quality.GravityConsistency)
		case "quality_acceptable":
			r.Quality.Acceptable = value == "true"
		}
		if err != nil {
			return Result{}, fmt.Errorf("calibration header line %d (%s): %w", lineNum, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("calibration header: %w", err)
	}
	return r, nil
}
