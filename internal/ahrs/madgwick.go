// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package ahrs maintains a live attitude estimate by fusing gyroscope
// integration with a gradient-descent correction toward the measured
// gravity and magnetic-field directions.
package ahrs

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ridelink-tech/attitude_engine/internal/orientation"
)

// DefaultBeta trades convergence speed against short-term gyro
// smoothness. Larger values trust the accelerometer/magnetometer more.
const DefaultBeta = 0.1

// Filter is a continuously running attitude estimator. It owns a single
// quaternion, updated once per ingested sample. A Filter is not safe
// for concurrent use; each consumer owns its own instance.
type Filter struct {
	q    orientation.Quaternion
	beta float64
}

// NewFilter returns a filter at the identity attitude. A non-positive
// beta selects DefaultBeta.
func NewFilter(beta float64) *Filter {
	if beta <= 0 {
		beta = DefaultBeta
	}
	return &Filter{q: orientation.Identity(), beta: beta}
}

// Reset returns the estimate to the identity attitude.
func (f *Filter) Reset() {
	f.q = orientation.Identity()
}

// Beta returns the configured correction gain.
func (f *Filter) Beta() float64 {
	return f.beta
}

// Quaternion returns the current attitude estimate.
func (f *Filter) Quaternion() orientation.Quaternion {
	return f.q
}

// Update advances the estimate by one sample. Gyro rates are rad/s, dt
// is the elapsed time in seconds. A zero-norm accel or mag reading (or
// non-positive dt) is a no-op returning the current estimate, so sensor
// dropouts never propagate a division by zero into the quaternion.
func (f *Filter) Update(accel, gyro, mag r3.Vec, dt float64) orientation.Quaternion {
	if dt <= 0 || r3.Norm(accel) == 0 || r3.Norm(mag) == 0 {
		return f.q
	}

	w, x, y, z := f.q.W, f.q.X, f.q.Y, f.q.Z
	gx, gy, gz := gyro.X, gyro.Y, gyro.Z

	// Rate of change of the quaternion from the gyroscope.
	qDotW := 0.5 * (-x*gx - y*gy - z*gz)
	qDotX := 0.5 * (w*gx + y*gz - z*gy)
	qDotY := 0.5 * (w*gy - x*gz + z*gx)
	qDotZ := 0.5 * (w*gz + x*gy - y*gx)

	a := r3.Unit(accel)
	m := r3.Unit(mag)
	ax, ay, az := a.X, a.Y, a.Z
	mx, my, mz := m.X, m.Y, m.Z

	twoWmx := 2 * w * mx
	twoWmy := 2 * w * my
	twoWmz := 2 * w * mz
	twoXmx := 2 * x * mx
	twoW := 2 * w
	twoX := 2 * x
	twoY := 2 * y
	twoZ := 2 * z
	twoWY := 2 * w * y
	twoYZ := 2 * y * z
	ww := w * w
	wx := w * x
	wy := w * y
	wz := w * z
	xx := x * x
	xy := x * y
	xz := x * z
	yy := y * y
	yz := y * z
	zz := z * z

	// Reference direction of Earth's magnetic field in the horizontal
	// (bx) and vertical (bz) components of the estimated frame.
	hx := mx*ww - twoWmy*z + twoWmz*y + mx*xx + twoX*my*y + twoX*mz*z - mx*yy - mx*zz
	hy := twoWmx*z + my*ww - twoWmz*x + twoXmx*y - my*xx + my*yy + twoY*mz*z - my*zz
	twoBx := math.Sqrt(hx*hx + hy*hy)
	twoBz := -twoWmx*y + twoWmy*x + mz*ww + twoXmx*z - mz*xx + twoY*my*z - mz*yy + mz*zz
	fourBx := 2 * twoBx
	fourBz := 2 * twoBz

	// Gradient of the 6-row objective (3 gravity residuals, 3 magnetic
	// residuals) with respect to the quaternion components.
	fgx := 2*xz - twoWY - ax
	fgy := 2*wx + twoYZ - ay
	fgz := 1 - 2*xx - 2*yy - az
	fbx := twoBx*(0.5-yy-zz) + twoBz*(xz-wy) - mx
	fby := twoBx*(xy-wz) + twoBz*(wx+yz) - my
	fbz := twoBx*(wy+xz) + twoBz*(0.5-xx-yy) - mz

	s0 := -twoY*fgx + twoX*fgy - twoBz*y*fbx + (-twoBx*z+twoBz*x)*fby + twoBx*y*fbz
	s1 := twoZ*fgx + twoW*fgy - 4*x*fgz + twoBz*z*fbx + (twoBx*y+twoBz*w)*fby + (twoBx*z-fourBz*x)*fbz
	s2 := -twoW*fgx + twoZ*fgy - 4*y*fgz + (-fourBx*y-twoBz*w)*fbx + (twoBx*x+twoBz*z)*fby + (twoBx*w-fourBz*y)*fbz
	s3 := twoX*fgx + twoY*fgy + (-fourBx*z+twoBz*x)*fbx + (-twoBx*w+twoBz*y)*fby + twoBx*x*fbz

	// Apply the normalized feedback step. A zero gradient means the
	// estimate already matches the measurements exactly.
	if n := math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3); n > 0 {
		qDotW -= f.beta * s0 / n
		qDotX -= f.beta * s1 / n
		qDotY -= f.beta * s2 / n
		qDotZ -= f.beta * s3 / n
	}

	f.q = orientation.NewQuaternion(w+qDotW*dt, x+qDotX*dt, y+qDotY*dt, z+qDotZ*dt)
	return f.q
}

// UpdateNoMag advances the estimate from gyro and accel only, for use
// when the magnetometer is absent or invalid. Heading drifts with the
// gyro in this mode.
func (f *Filter) UpdateNoMag(accel, gyro r3.Vec, dt float64) orientation.Quaternion {
	if dt <= 0 || r3.Norm(accel) == 0 {
		return f.q
	}

	w, x, y, z := f.q.W, f.q.X, f.q.Y, f.q.Z
	gx, gy, gz := gyro.X, gyro.Y, gyro.Z

	qDotW := 0.5 * (-x*gx - y*gy - z*gz)
	qDotX := 0.5 * (w*gx + y*gz - z*gy)
	qDotY := 0.5 * (w*gy - x*gz + z*gx)
	qDotZ := 0.5 * (w*gz + x*gy - y*gx)

	a := r3.Unit(accel)
	ax, ay, az := a.X, a.Y, a.Z

	ww := w * w
	xx := x * x
	yy := y * y
	zz := z * z

	s0 := 4*w*yy + 2*y*ax + 4*w*xx - 2*x*ay
	s1 := 4*x*zz - 2*z*ax + 4*ww*x - 2*w*ay - 4*x + 8*x*xx + 8*x*yy + 4*x*az
	s2 := 4*ww*y + 2*w*ax + 4*y*zz - 2*z*ay - 4*y + 8*y*xx + 8*y*yy + 4*y*az
	s3 := 4*xx*z - 2*x*ax + 4*yy*z - 2*y*ay

	if n := math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3); n > 0 {
		qDotW -= f.beta * s0 / n
		qDotX -= f.beta * s1 / n
		qDotY -= f.beta * s2 / n
		qDotZ -= f.beta * s3 / n
	}

	f.q = orientation.NewQuaternion(w+qDotW*dt, x+qDotX*dt, y+qDotY*dt, z+qDotZ*dt)
	return f.q
}
