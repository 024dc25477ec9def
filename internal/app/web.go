// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/ridelink-tech/attitude_engine/internal/ahrs"
	"github.com/ridelink-tech/attitude_engine/internal/calibration"
	"github.com/ridelink-tech/attitude_engine/internal/config"
	"github.com/ridelink-tech/attitude_engine/internal/imu"
	"github.com/ridelink-tech/attitude_engine/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsAction is a command sent by the calibration UI over the websocket.
type wsAction struct {
	Action string `json:"action"` // start, cancel, clear
}

// engine ties the sample stream to the calibration session and the live
// fusion filter, and fans progress out to websocket clients.
type engine struct {
	session *calibration.Session

	mu           sync.Mutex
	filter       *ahrs.Filter
	lastTsMs     int64
	lastAttitude orientation.Quaternion
	subscribers  map[chan calibration.Progress]struct{}
}

func newEngine(beta float64) *engine {
	return &engine{
		session:     calibration.NewSession(),
		filter:      ahrs.NewFilter(beta),
		subscribers: make(map[chan calibration.Progress]struct{}),
	}
}

// ingest feeds one raw sample to both consumers of the stream: the
// calibration session (which drops it unless collecting) and the
// always-running fusion filter.
func (e *engine) ingest(s imu.RawSample) orientation.Quaternion {
	e.session.AddSample(s)

	e.mu.Lock()
	defer e.mu.Unlock()

	dt := 0.02
	if e.lastTsMs != 0 && s.TimestampMs > e.lastTsMs {
		dt = float64(s.TimestampMs-e.lastTsMs) / 1000
	}
	e.lastTsMs = s.TimestampMs

	e.lastAttitude = e.filter.Update(s.Accel(), s.Gyro(), s.Mag(), dt)
	return e.lastAttitude
}

func (e *engine) attitude() orientation.Quaternion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAttitude
}

func (e *engine) subscribe() chan calibration.Progress {
	ch := make(chan calibration.Progress, 16)
	e.mu.Lock()
	e.subscribers[ch] = struct{}{}
	e.mu.Unlock()
	return ch
}

// unsubscribe removes the channel from the fan-out set and closes it,
// releasing any range loop draining it. Safe against double calls. The
// close happens under the same lock fanOut sends under, so no send can
// race it.
func (e *engine) unsubscribe(ch chan calibration.Progress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.subscribers[ch]; ok {
		delete(e.subscribers, ch)
		close(ch)
	}
}

// fanOut never blocks on a slow client: full subscriber buffers drop
// the oldest snapshot first.
func (e *engine) fanOut(p calibration.Progress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := range e.subscribers {
		select {
		case ch <- p:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- p:
			default:
			}
		}
	}
}

// RunWeb consumes the MQTT sample stream, keeps a live attitude
// estimate, and serves the calibration UI: a JSON API plus a websocket
// that starts and watches calibration sessions.
func RunWeb() error {
	cfg := config.Get()
	eng := newEngine(cfg.FusionBeta)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Progress pump: publish every snapshot, fan out to websockets, and
	// push the result header once a session completes.
	go func() {
		for p := range eng.session.Progress() {
			eng.fanOut(p)
			if payload, err := json.Marshal(p); err == nil {
				client.Publish(cfg.TopicProgress, 0, false, payload)
			}
			if p.State == calibration.Completed {
				if res, ok := eng.session.Result(); ok {
					client.Publish(cfg.TopicResult, 0, true, []byte(res.EncodeHeader()))
				}
			}
		}
	}()

	token := client.Subscribe(cfg.TopicSamples, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.RawSample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("web: sample unmarshal error: %v", err)
			return
		}
		q := eng.ingest(s)
		if payload, err := json.Marshal(q); err == nil {
			client.Publish(cfg.TopicAttitude, 0, false, payload)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicSamples)

	http.HandleFunc("/api/attitude", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(eng.attitude()); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/calibration", func(w http.ResponseWriter, r *http.Request) {
		res, ok := eng.session.Result()
		if !ok {
			http.Error(w, "no calibration result", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/ws/calibration", func(w http.ResponseWriter, r *http.Request) {
		handleCalibrationWS(w, r, eng, cfg)
	})

	// Static files from ./web as the root
	http.Handle("/", http.FileServer(http.Dir("web")))

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// handleCalibrationWS drives one calibration client: commands in,
// progress snapshots out.
func handleCalibrationWS(w http.ResponseWriter, r *http.Request, eng *engine, cfg *config.Config) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	progressCh := eng.subscribe()

	// Teardown must run on every read-loop exit: unsubscribing closes
	// progressCh so the writer's range ends, and closing the connection
	// unblocks any write in flight.
	done := make(chan struct{})
	defer func() {
		eng.unsubscribe(progressCh)
		conn.Close()
		<-done
	}()

	// One writer mutex for the progress stream and error replies; the
	// connection allows a single concurrent writer.
	var writeMu sync.Mutex
	writeJSON := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	// Writer: forward progress snapshots until unsubscribed or the
	// client goes away.
	go func() {
		defer close(done)
		for p := range progressCh {
			if err := writeJSON(p); err != nil {
				return
			}
		}
	}()

	for {
		var msg wsAction
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("web: websocket read error: %v", err)
			return
		}

		switch msg.Action {
		case "start":
			err := eng.session.Start(calibration.SessionConfig{
				Duration:           time.Duration(cfg.CalibrationDurationMs) * time.Millisecond,
				MinSamples:         cfg.CalibrationMinSamples,
				StabilityThreshold: cfg.StabilityThreshold,
				MaxExtensions:      cfg.MaxExtensions,
			})
			if err != nil {
				writeJSON(map[string]string{"error": err.Error()})
			}
		case "cancel":
			eng.session.Cancel()
		case "clear":
			eng.session.Clear()
		default:
			writeJSON(map[string]string{"error": fmt.Sprintf("unknown action %q", msg.Action)})
		}
	}
}
