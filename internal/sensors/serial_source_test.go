// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package sensors

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineSource builds a serialSource over canned protocol lines, no port
// attached.
func lineSource(lines string) *serialSource {
	return &serialSource{scanner: bufio.NewScanner(strings.NewReader(lines))}
}

func TestParseFrame(t *testing.T) {
	t.Parallel()

	s, err := parseFrame("0.1,0.2,9.81,0.01,0.02,0.03,30,0,-20")
	require.NoError(t, err)

	assert.Equal(t, 0.1, s.Ax)
	assert.Equal(t, 9.81, s.Az)
	assert.Equal(t, 0.03, s.Gz)
	assert.Equal(t, -20.0, s.Mz)
	assert.NotZero(t, s.TimestampMs)
}

func TestParseFrame_WithSpaces(t *testing.T) {
	t.Parallel()

	s, err := parseFrame("0.1, 0.2, 9.81, 0, 0, 0, 30, 0, -20")
	require.NoError(t, err)
	assert.Equal(t, 0.2, s.Ay)
}

func TestParseFrame_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
	}{
		{"too few fields", "1,2,3"},
		{"too many fields", "1,2,3,4,5,6,7,8,9,10"},
		{"non-numeric field", "1,2,x,4,5,6,7,8,9"},
		{"empty", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseFrame(tc.line)
			assert.Error(t, err)
		})
	}
}

func TestNext_FullFrames(t *testing.T) {
	t.Parallel()

	src := lineSource(
		"# boot banner\n" +
			"\n" +
			"garbage line\n" +
			"0.1,0.2,9.81,0,0,0,30,0,-20\n")

	s, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 9.81, s.Az)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNext_PerSensorFrames(t *testing.T) {
	t.Parallel()

	// Sensors arrive at their own rates; a sample fires only once a mag
	// frame completes a latched accel+gyro pair.
	src := lineSource(
		"M,29,0,-19\n" + // no accel/gyro yet, dropped
			"A,0.1,0.2,9.81\n" +
			"G,0.01,0.02,0.03\n" +
			"M,30,0,-20\n" +
			"A,0.5,0.2,9.81\n" + // relatch accel
			"M,31,0,-20\n")

	s, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.Ax)
	assert.Equal(t, 0.03, s.Gz)
	assert.Equal(t, 30.0, s.Mx)
	assert.NotZero(t, s.TimestampMs)

	s, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Ax)
	assert.Equal(t, 31.0, s.Mx)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNext_SkipsMalformedPerSensorFrames(t *testing.T) {
	t.Parallel()

	src := lineSource(
		"A,0,0,9.81\n" +
			"G,0,0,0\n" +
			"X,1,2,3\n" + // unknown tag
			"M,x,0,-20\n" + // bad number
			"M,30,0,-20\n")

	s, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.Mx)
}

func TestMockSource_LooksLikeStillDevice(t *testing.T) {
	t.Parallel()

	src := NewMockSource()
	for i := 0; i < 20; i++ {
		s, err := src.Next()
		require.NoError(t, err)

		assert.InDelta(t, 9.81, s.Az, 0.1, "gravity on +Z")
		assert.InDelta(t, 0, s.Ax, 0.1)
		assert.InDelta(t, 0, s.Gx, 0.05, "near-zero rotation")
		assert.InDelta(t, 30, s.Mx, 1, "plausible field")
		assert.NotZero(t, s.TimestampMs)
	}
}
