// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

// Package sensors provides raw sample sources: a mock generator for
// development and a serial line reader for externally attached IMUs.
package sensors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jacobsa/go-serial/serial"

	"github.com/ridelink-tech/attitude_engine/internal/imu"
)

// serialSource reads newline-delimited frames from a serial-attached
// IMU bridge. Two frame shapes are accepted:
//
//	ax,ay,az,gx,gy,gz,mx,my,mz    full sample
//	A,x,y,z / G,x,y,z / M,x,y,z   per-sensor readings
//
// Per-sensor readings are latched until a magnetometer frame completes
// the triple, for bridges that forward each sensor at its own rate.
type serialSource struct {
	port    io.ReadWriteCloser
	scanner *bufio.Scanner
	latcher imu.Latcher
}

// NewSerialSource opens the given serial port and returns a sample
// source over its line protocol.
func NewSerialSource(portName string, baud int) (imu.Source, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", portName, err)
	}

	return &serialSource{
		port:    port,
		scanner: bufio.NewScanner(port),
	}, nil
}

func (s *serialSource) Next() (imu.RawSample, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Torn or unknown lines at open time are normal; skip them.
		sample, ok, err := s.consumeFrame(line)
		if err != nil || !ok {
			continue
		}
		return sample, nil
	}

	if err := s.scanner.Err(); err != nil {
		return imu.RawSample{}, fmt.Errorf("serial read: %w", err)
	}
	return imu.RawSample{}, io.EOF
}

// consumeFrame handles one protocol line. ok is false for lines that
// were valid but did not yet complete a sample (latched per-sensor
// readings).
func (s *serialSource) consumeFrame(line string) (imu.RawSample, bool, error) {
	fields := strings.Split(line, ",")
	switch len(fields) {
	case 9:
		sample, err := parseFrame(line)
		return sample, err == nil, err
	case 4:
		v, err := parseFields(fields[1:])
		if err != nil {
			return imu.RawSample{}, false, err
		}
		switch strings.TrimSpace(fields[0]) {
		case "A":
			s.latcher.PushAccel(v[0], v[1], v[2])
			return imu.RawSample{}, false, nil
		case "G":
			s.latcher.PushGyro(v[0], v[1], v[2])
			return imu.RawSample{}, false, nil
		case "M":
			sample, ok := s.latcher.PushMag(v[0], v[1], v[2], time.Now().UnixMilli())
			return sample, ok, nil
		default:
			return imu.RawSample{}, false, fmt.Errorf("unknown sensor tag %q", fields[0])
		}
	default:
		return imu.RawSample{}, false, fmt.Errorf("frame has %d fields, want 9 or 4", len(fields))
	}
}

// Close releases the serial port.
func (s *serialSource) Close() error {
	return s.port.Close()
}

func parseFrame(line string) (imu.RawSample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 9 {
		return imu.RawSample{}, fmt.Errorf("frame has %d fields, want 9", len(fields))
	}

	v, err := parseFields(fields)
	if err != nil {
		return imu.RawSample{}, err
	}

	return imu.RawSample{
		Ax: v[0], Ay: v[1], Az: v[2],
		Gx: v[3], Gy: v[4], Gz: v[5],
		Mx: v[6], My: v[7], Mz: v[8],
		TimestampMs: time.Now().UnixMilli(),
	}, nil
}

func parseFields(fields []string) ([]float64, error) {
	v := make([]float64, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("frame field %d: %w", i, err)
		}
		v[i] = x
	}
	return v, nil
}
