// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package calibration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink-tech/attitude_engine/internal/stability"
)

func TestProgress_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	p := Progress{
		State:           Collecting,
		PercentComplete: 42.5,
		Message:         "collecting samples (17 so far)",
		RemainingMs:     1720,
		Stability:       stability.Good,
		CanExtend:       true,
	}

	payload, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"state":"collecting"`)
	assert.Contains(t, string(payload), `"stability":"good"`)

	var back Progress
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.Equal(t, p, back)
}

func TestStateUnmarshalText(t *testing.T) {
	t.Parallel()

	var s State
	require.NoError(t, s.UnmarshalText([]byte("failed")))
	assert.Equal(t, Failed, s)

	assert.Error(t, s.UnmarshalText([]byte("limbo")))
}
