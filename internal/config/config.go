// Copyright (c) 2026 RideLink Tech
// SPDX-License-Identifier: MIT

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string

	// Topics
	TopicSamples  string
	TopicProgress string
	TopicResult   string
	TopicAttitude string

	// Sample source: "mock" or "serial"
	SampleSource string
	SerialPort   string
	SerialBaud   int

	// Timing
	SampleIntervalMs int

	// Web server
	WebServerPort int

	// Calibration defaults
	CalibrationDurationMs int
	CalibrationMinSamples int
	StabilityThreshold    float64
	MaxExtensions         int

	// Fusion filter
	FusionBeta float64
}

// Package-level singleton guarded for concurrent readers. External code
// must use InitGlobal to set and Get to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

func defaults() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "attitude-producer",
		MQTTClientIDConsole:  "attitude-console",
		MQTTClientIDWeb:      "attitude-web",

		TopicSamples:  "attitude/samples",
		TopicProgress: "attitude/calibration/progress",
		TopicResult:   "attitude/calibration/result",
		TopicAttitude: "attitude/live",

		SampleSource: "mock",
		SerialPort:   "/dev/ttyUSB0",
		SerialBaud:   115200,

		SampleIntervalMs: 20,
		WebServerPort:    8080,

		CalibrationDurationMs: 3000,
		CalibrationMinSamples: 50,
		StabilityThreshold:    2.0,
		MaxExtensions:         3,

		FusionBeta: 0.1,
	}
}

// Load reads the configuration file and returns a Config struct. Keys
// not present keep their defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setValue(key, value string) error {
	switch key {
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	case "TOPIC_SAMPLES":
		c.TopicSamples = value
	case "TOPIC_PROGRESS":
		c.TopicProgress = value
	case "TOPIC_RESULT":
		c.TopicResult = value
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value

	case "SAMPLE_SOURCE":
		if value != "mock" && value != "serial" {
			return fmt.Errorf("SAMPLE_SOURCE must be \"mock\" or \"serial\", got %q", value)
		}
		c.SampleSource = value
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		baud, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		c.SerialBaud = baud

	case "SAMPLE_INTERVAL_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("SAMPLE_INTERVAL_MS must be positive, got %d", ms)
		}
		c.SampleIntervalMs = ms

	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	case "CALIBRATION_DURATION_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_DURATION_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("CALIBRATION_DURATION_MS must be positive, got %d", ms)
		}
		c.CalibrationDurationMs = ms
	case "CALIBRATION_MIN_SAMPLES":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_MIN_SAMPLES %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("CALIBRATION_MIN_SAMPLES must be positive, got %d", n)
		}
		c.CalibrationMinSamples = n
	case "STABILITY_THRESHOLD":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid STABILITY_THRESHOLD %q: %w", value, err)
		}
		if f <= 0 {
			return fmt.Errorf("STABILITY_THRESHOLD must be positive, got %g", f)
		}
		c.StabilityThreshold = f
	case "MAX_EXTENSIONS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAX_EXTENSIONS %q: %w", value, err)
		}
		if n < 0 {
			return fmt.Errorf("MAX_EXTENSIONS must not be negative, got %d", n)
		}
		c.MaxExtensions = n

	case "FUSION_BETA":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FUSION_BETA %q: %w", value, err)
		}
		if f <= 0 || f > 1 {
			return fmt.Errorf("FUSION_BETA must be in (0,1], got %g", f)
		}
		c.FusionBeta = f

	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER must not be empty")
	}
	if c.TopicSamples == "" || c.TopicProgress == "" || c.TopicResult == "" || c.TopicAttitude == "" {
		return fmt.Errorf("topics must not be empty")
	}
	if c.SampleSource == "serial" && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT must be set when SAMPLE_SOURCE=serial")
	}
	return nil
}

// InitGlobal loads the configuration once for the whole process. A
// missing file falls back to built-in defaults.
func InitGlobal(configPath string) error {
	var initErr error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()

		cfg, err := Load(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				globalConfig = defaults()
				return
			}
			initErr = err
			return
		}
		globalConfig = cfg
	})
	return initErr
}

// Get returns the process-wide configuration. Safe for concurrent use;
// falls back to defaults if InitGlobal was never called.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	if globalConfig == nil {
		return defaults()
	}
	return globalConfig
}
