package imu

import "sync"

// Latcher combines independently arriving per-sensor readings into
// coherent triples. Accelerometer and gyroscope readings are latched;
// a complete RawSample fires on every magnetometer arrival, which is
// typically the slowest of the three streams.
type Latcher struct {
	mu sync.Mutex

	ax, ay, az float64
	gx, gy, gz float64

	haveAccel bool
	haveGyro  bool
}

// PushAccel latches the latest accelerometer reading (m/s²).
func (l *Latcher) PushAccel(x, y, z float64) {
	l.mu.Lock()
	l.ax, l.ay, l.az = x, y, z
	l.haveAccel = true
	l.mu.Unlock()
}

// PushGyro latches the latest gyroscope reading (rad/s).
func (l *Latcher) PushGyro(x, y, z float64) {
	l.mu.Lock()
	l.gx, l.gy, l.gz = x, y, z
	l.haveGyro = true
	l.mu.Unlock()
}

// PushMag combines the latest latched accel/gyro readings with the given
// magnetometer reading (μT) into a RawSample. Returns false until at
// least one accel and one gyro reading have been latched.
func (l *Latcher) PushMag(x, y, z float64, timestampMs int64) (RawSample, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.haveAccel || !l.haveGyro {
		return RawSample{}, false
	}
	return RawSample{
		Ax: l.ax, Ay: l.ay, Az: l.az,
		Gx: l.gx, Gy: l.gy, Gz: l.gz,
		Mx: x, My: y, Mz: z,
		TimestampMs: timestampMs,
	}, true
}
