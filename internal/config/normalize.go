// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Connection.Port = strings.TrimSpace(cfg.Connection.Port)
	cfg.Connection.URL = strings.TrimSpace(cfg.Connection.URL)
	cfg.Connection.Username = strings.TrimSpace(cfg.Connection.Username)

	// Trim channel names and drop empty entries so comma-split lists
	// with stray separators stay usable.
	kept := cfg.Monitor.Channels[:0]
	for _, ch := range cfg.Monitor.Channels {
		if ch = strings.TrimSpace(ch); ch != "" {
			kept = append(kept, ch)
		}
	}
	cfg.Monitor.Channels = kept
}
