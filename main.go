// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs
//
// Mindstat - NeuroSky ThinkGear EEG Monitor
//
// A CLI tool for decoding, monitoring and capturing ThinkGear telemetry
// from NeuroSky EEG headsets.

package main

import (
	"os"

	"github.com/neurotap/mindstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
