// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"io"
	"time"
)

// PacedSink adapts a blocking io.Writer into a rate-limited Sink. It
// models the transmit buffer of a serial link: capacity refills at a
// fixed byte rate up to a burst ceiling, and Free never blocks. The sink
// starts full.
type PacedSink struct {
	w     io.Writer
	rate  int // bytes per second
	burst int // buffer depth in bytes
	level int // bytes currently writable
	last  time.Time
	now   func() time.Time
}

// NewPacedSink creates a sink draining rate bytes per second with the
// given burst depth. Non-positive arguments are raised to 1.
func NewPacedSink(w io.Writer, rate, burst int) *PacedSink {
	if rate < 1 {
		rate = 1
	}
	if burst < 1 {
		burst = 1
	}
	s := &PacedSink{w: w, rate: rate, burst: burst, level: burst, now: time.Now}
	s.last = s.now()
	return s
}

// Free reports how many bytes may be written right now.
func (s *PacedSink) Free() int {
	s.refill()
	return s.level
}

// Write sends p to the underlying writer and consumes capacity. Callers
// are expected to stay within Free; an oversized write still goes through
// but leaves the sink empty.
func (s *PacedSink) Write(p []byte) (int, error) {
	s.refill()
	s.level = Clamp(s.level-len(p), 0, s.burst)
	return s.w.Write(p)
}

// refill credits capacity for the time elapsed since the last refill.
// The refill instant advances by the whole bytes credited, so fractional
// byte times are never lost.
func (s *PacedSink) refill() {
	now := s.now()
	elapsed := now.Sub(s.last)
	if elapsed <= 0 {
		return
	}
	n := int(elapsed * time.Duration(s.rate) / time.Second)
	if n <= 0 {
		return
	}
	s.level = Clamp(s.level+n, 0, s.burst)
	s.last = s.last.Add(time.Duration(n) * time.Second / time.Duration(s.rate))
}
