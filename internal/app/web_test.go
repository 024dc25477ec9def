// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink-tech/attitude_engine/internal/calibration"
	"github.com/ridelink-tech/attitude_engine/internal/config"
)

func (e *engine) subscriberCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscribers)
}

func newWSTestServer(t *testing.T, eng *engine) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleCalibrationWS(w, r, eng, config.Get())
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestCalibrationWS_StartStreamsProgress(t *testing.T) {
	eng := newEngine(0.1)
	defer eng.session.Close()

	// Pump progress into the fan-out the way RunWeb does.
	go func() {
		for p := range eng.session.Progress() {
			eng.fanOut(p)
		}
	}()

	conn := dialWS(t, newWSTestServer(t, eng))
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsAction{Action: "start"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var p calibration.Progress
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, calibration.Collecting, p.State)

	require.NoError(t, conn.WriteJSON(wsAction{Action: "cancel"}))
	require.Eventually(t, func() bool {
		return eng.session.State() == calibration.Idle
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCalibrationWS_ReleasesSubscriptionOnMalformedMessage(t *testing.T) {
	eng := newEngine(0.1)
	defer eng.session.Close()

	conn := dialWS(t, newWSTestServer(t, eng))
	defer conn.Close()

	require.Eventually(t, func() bool {
		return eng.subscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// An action with the wrong shape fails the decoder; the handler must
	// drop the connection and release its subscription rather than park
	// with a dead control loop.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action": 123}`)))

	require.Eventually(t, func() bool {
		return eng.subscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCalibrationWS_ReleasesSubscriptionOnDisconnect(t *testing.T) {
	eng := newEngine(0.1)
	defer eng.session.Close()

	conn := dialWS(t, newWSTestServer(t, eng))

	require.Eventually(t, func() bool {
		return eng.subscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return eng.subscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngineUnsubscribe_Idempotent(t *testing.T) {
	eng := newEngine(0.1)
	defer eng.session.Close()

	ch := eng.subscribe()
	eng.unsubscribe(ch)
	eng.unsubscribe(ch) // second call must not close twice or panic
	assert.Equal(t, 0, eng.subscriberCount())

	// A closed subscription no longer receives fan-out.
	eng.fanOut(calibration.Progress{State: calibration.Collecting})
	_, open := <-ch
	assert.False(t, open)
}
