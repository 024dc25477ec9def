// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ridelink-tech/attitude_engine/internal/calibration"
	"github.com/ridelink-tech/attitude_engine/internal/config"
	"github.com/ridelink-tech/attitude_engine/internal/imu"
	"github.com/ridelink-tech/attitude_engine/internal/orientation"
)

// RunConsole subscribes to the sample, progress and attitude topics and
// prints everything it sees. Handy for eyeballing a live setup.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	sampleToken := client.Subscribe(cfg.TopicSamples, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.RawSample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: sample unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[RAW ] a=(%6.2f %6.2f %6.2f)  g=(%6.3f %6.3f %6.3f)  m=(%6.1f %6.1f %6.1f)\n",
			s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.Mx, s.My, s.Mz,
		)
	})
	sampleToken.Wait()
	if sampleToken.Error() != nil {
		return sampleToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSamples)

	progressToken := client.Subscribe(cfg.TopicProgress, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p calibration.Progress
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: progress unmarshal error: %v", err)
			return
		}
		fmt.Printf(
			"[CAL ] %-10s %5.1f%%  stability=%-9s remaining=%dms  %s\n",
			p.State, p.PercentComplete, p.Stability, p.RemainingMs, p.Message,
		)
	})
	progressToken.Wait()
	if progressToken.Error() != nil {
		return progressToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicProgress)

	attitudeToken := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var q orientation.Quaternion
		if err := json.Unmarshal(msg.Payload(), &q); err != nil {
			log.Printf("console: attitude unmarshal error: %v", err)
			return
		}
		fmt.Printf("[ATT ] q=(%7.4f %7.4f %7.4f %7.4f)\n", q.W, q.X, q.Y, q.Z)
	})
	attitudeToken.Wait()
	if attitudeToken.Error() != nil {
		return attitudeToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAttitude)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
