// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"fmt"
	"strings"
	"time"
)

// Statistics tracks session figures for display surfaces. The integration
// layer feeds TotalBytes and Frames; anomaly figures come from the shared
// Counters' lifetime tallies, so they survive reporter drains.
type Statistics struct {
	StartTime  time.Time
	TotalBytes uint64
	Frames     uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ByteRate  float64 // bytes/sec
	ErrorRate float64 // anomaly events/sec

	counters *Counters
}

// NewStatistics creates a statistics tracker over c.
func NewStatistics(c *Counters) *Statistics {
	return &Statistics{StartTime: time.Now(), counters: c}
}

// AddBytes records n consumed input bytes.
func (s *Statistics) AddBytes(n int) {
	if n > 0 {
		s.TotalBytes += uint64(n)
	}
}

// AddFrame records one checksum-valid frame.
func (s *Statistics) AddFrame() { s.Frames++ }

// CalculateRates refreshes the derived rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.FrameRate = float64(s.Frames) / elapsed
	s.ByteRate = float64(s.TotalBytes) / elapsed
	s.ErrorRate = float64(s.counters.ErrorEvents()) / elapsed
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()
	elapsed := time.Since(s.StartTime)

	var b strings.Builder
	fmt.Fprintf(&b, "=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	fmt.Fprintf(&b, "Bytes:             %10d\n", s.TotalBytes)
	fmt.Fprintf(&b, "Valid Frames:      %10d\n", s.Frames)
	for _, k := range ErrorKinds() {
		if n := s.counters.Lifetime(k); n > 0 {
			fmt.Fprintf(&b, "%-19s%10d\n", k.String()+":", n)
		}
	}
	fmt.Fprintf(&b, "Frame Rate:        %10.1f frames/sec\n", s.FrameRate)
	fmt.Fprintf(&b, "Byte Rate:         %10.1f bytes/sec\n", s.ByteRate)
	fmt.Fprintf(&b, "Error Rate:        %10.1f errors/sec\n", s.ErrorRate)
	b.WriteString("================================\n")
	return b.String()
}

// Reset restarts the session clock and zeroes every figure, including
// the shared counters.
func (s *Statistics) Reset() {
	s.StartTime = time.Now()
	s.TotalBytes = 0
	s.Frames = 0
	s.FrameRate = 0
	s.ByteRate = 0
	s.ErrorRate = 0
	s.counters.Reset()
}
