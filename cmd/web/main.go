// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log"

	"github.com/ridelink-tech/attitude_engine/internal/app"
	"github.com/ridelink-tech/attitude_engine/internal/config"
)

func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting attitude-engine web server (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: calibration requires the sample producer to be running")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
