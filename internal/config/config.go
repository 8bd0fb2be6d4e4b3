// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package config

import (
	"github.com/neurotap/mindstat/pkg/thinkgear"
)

// Config is the optional YAML configuration file. Command line flags
// always win over file values.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

// ---- CONNECTION ----

type ConnectionConfig struct {
	Port        string `yaml:"port"`
	Baud        int    `yaml:"baud"`
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	Plot     bool     `yaml:"plot"`
	Steps    int      `yaml:"steps"`
	Height   int      `yaml:"height"`
	Channels []string `yaml:"channels"`
	OutRate  int      `yaml:"out_rate"`
	Burst    int      `yaml:"burst"`
	TickMs   int      `yaml:"tick_ms"`
}

// Default returns the built-in configuration: headset serial settings
// and a display channel paced like a typical USB serial console.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			Baud: 57600,
		},
		Monitor: MonitorConfig{
			Steps:    thinkgear.DefaultPlotSteps,
			Height:   thinkgear.DefaultPlotHeight,
			Channels: []string{"all"},
			OutRate:  11520,
			Burst:    512,
			TickMs:   10,
		},
	}
}
