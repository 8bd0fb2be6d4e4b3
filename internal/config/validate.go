// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package config

import (
	"fmt"
	"strings"

	"github.com/neurotap/mindstat/pkg/thinkgear"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// CONNECTION
	// ------------------------------------------------------------

	if cfg.Connection.Port != "" && cfg.Connection.URL != "" {
		return fmt.Errorf("connection: port and url are mutually exclusive")
	}
	if cfg.Connection.Baud < 0 {
		return fmt.Errorf("connection: baud must not be negative, got %d", cfg.Connection.Baud)
	}
	if u := cfg.Connection.URL; u != "" &&
		!strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		return fmt.Errorf("connection: url must use the ws:// or wss:// scheme, got %q", u)
	}

	// ------------------------------------------------------------
	// MONITOR
	// ------------------------------------------------------------

	// Zero means unset; the default fills in later.
	if s := cfg.Monitor.Steps; s != 0 &&
		(s < thinkgear.MinPlotSteps || s > thinkgear.MaxPlotSteps) {
		return fmt.Errorf("monitor: steps must be %d-%d, got %d",
			thinkgear.MinPlotSteps, thinkgear.MaxPlotSteps, s)
	}
	if h := cfg.Monitor.Height; h != 0 &&
		(h < thinkgear.MinPlotHeight || h > thinkgear.MaxPlotHeight) {
		return fmt.Errorf("monitor: height must be %d-%d, got %d",
			thinkgear.MinPlotHeight, thinkgear.MaxPlotHeight, h)
	}
	if cfg.Monitor.OutRate < 0 {
		return fmt.Errorf("monitor: out_rate must not be negative, got %d", cfg.Monitor.OutRate)
	}
	if cfg.Monitor.Burst < 0 {
		return fmt.Errorf("monitor: burst must not be negative, got %d", cfg.Monitor.Burst)
	}
	if cfg.Monitor.TickMs < 0 {
		return fmt.Errorf("monitor: tick_ms must not be negative, got %d", cfg.Monitor.TickMs)
	}

	names := make([]string, 0, len(cfg.Monitor.Channels))
	for _, n := range cfg.Monitor.Channels {
		if strings.TrimSpace(n) != "" {
			names = append(names, n)
		}
	}
	if _, err := thinkgear.ParseSelection(names); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	return nil
}
