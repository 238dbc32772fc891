package main

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds process-wide defaults sourced from the environment. No
// command-line flag overrides these fields. Of the two timeouts only
// RWTimeoutMicros is passed to input opens (transcode, decode-png);
// STimeoutMicros and HWDevicePreferred are read but not used.
type Config struct {
	LogLevel         string `envconfig:"REEL_LOG_LEVEL" default:"info"`
	RWTimeoutMicros  int64  `envconfig:"REEL_RW_TIMEOUT_MICROS" default:"16000000"`
	STimeoutMicros   int64  `envconfig:"REEL_STIMEOUT_MICROS" default:"16000000"`
	HWDevicePreferred string `envconfig:"REEL_HW_DEVICE" default:""`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
