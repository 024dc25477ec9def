// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ridelink-tech/attitude_engine/internal/calibration"
	"github.com/ridelink-tech/attitude_engine/internal/config"
)

// RunCalibrate performs one guided calibration against the local sample
// source and writes the result block to a timestamped file in the
// working directory. No broker involved: this is the bench workflow.
func RunCalibrate() error {
	cfg := config.Get()

	src, closer, err := newSource(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	session := calibration.NewSession()
	defer session.Close()

	fmt.Println("Place the device in its mounted position and keep it still.")
	fmt.Printf("Collecting for %.1fs...\n", float64(cfg.CalibrationDurationMs)/1000)

	err = session.Start(calibration.SessionConfig{
		Duration:           time.Duration(cfg.CalibrationDurationMs) * time.Millisecond,
		MinSamples:         cfg.CalibrationMinSamples,
		StabilityThreshold: cfg.StabilityThreshold,
		MaxExtensions:      cfg.MaxExtensions,
	})
	if err != nil {
		return err
	}

	// Feed the session from the source until it leaves Collecting. The
	// progress stream is drained in parallel for console output.
	feedDone := make(chan error, 1)
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.SampleIntervalMs) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			st := session.State()
			if st != calibration.Collecting {
				feedDone <- nil
				return
			}
			sample, err := src.Next()
			if err != nil {
				feedDone <- fmt.Errorf("sample source: %w", err)
				return
			}
			session.AddSample(sample)
		}
	}()

	for p := range session.Progress() {
		switch p.State {
		case calibration.Collecting:
			fmt.Printf("\r  %5.1f%%  stability=%-9s remaining=%4dms   ",
				p.PercentComplete, p.Stability, p.RemainingMs)
		case calibration.Processing:
			fmt.Printf("\r  processing...                                \n")
		case calibration.Completed:
			fmt.Println(p.Message)
			if err := <-feedDone; err != nil {
				log.Printf("calibrate: %v", err)
			}
			res, ok := session.Result()
			if !ok {
				return fmt.Errorf("session completed without a result")
			}
			return writeResult(res)
		case calibration.Failed:
			<-feedDone
			return fmt.Errorf("calibration failed: %s", p.Message)
		}
	}
	return nil
}

func writeResult(res calibration.Result) error {
	name := fmt.Sprintf("calibration_%s.txt", res.CollectedAt.Format("20060102_150405"))
	if err := os.WriteFile(name, []byte(res.EncodeHeader()), 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	fmt.Printf("Result written to %s\n", name)
	fmt.Printf("  pitch   %8.2f°\n", res.PitchDeg)
	fmt.Printf("  roll    %8.2f°\n", res.RollDeg)
	fmt.Printf("  azimuth %8.2f°\n", res.AzimuthDeg)
	fmt.Printf("  quality %8.1f\n", res.Quality.OverallScore)
	return nil
}
