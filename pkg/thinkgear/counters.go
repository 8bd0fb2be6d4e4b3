// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"fmt"
	"math"
)

// ErrorKind classifies a wire or scheduling anomaly. The set is closed:
// new damage modes get a new kind here rather than a Go error on the
// decode path.
type ErrorKind int

// Anomaly kinds.
const (
	// MissingSync counts bytes consumed while hunting for a sync pair.
	MissingSync ErrorKind = iota
	// BadPayloadLength counts declared lengths above MaxPayloadSize.
	BadPayloadLength
	// BadChecksum counts frames whose inverted-sum check failed.
	BadChecksum
	// EEGBadLength counts EEGPower fields with an impossible length.
	EEGBadLength
	// RawPayloadTooBig counts RawWave blocks running past the payload end.
	RawPayloadTooBig
	// UnrecognizedCode counts field codes outside the known set.
	UnrecognizedCode
	// ReadPastPayloadEnd counts fields truncated by the payload boundary.
	ReadPastPayloadEnd
	// SkippedUpdate counts value updates that arrived before the previous
	// one finished being emitted.
	SkippedUpdate
	// DiscardedBytes aggregates every byte thrown away for any reason.
	DiscardedBytes

	errorKindCount
)

var errorKindNames = [errorKindCount]string{
	"MissingSync",
	"BadPayloadLength",
	"BadChecksum",
	"EEGBadLength",
	"RawPayloadTooBig",
	"UnrecognizedCode",
	"ReadPastPayloadEnd",
	"SkippedUpdate",
	"DiscardedBytes",
}

func (k ErrorKind) String() string {
	if k < 0 || k >= errorKindCount {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// ErrorKinds returns every kind in reporting order.
func ErrorKinds() []ErrorKind {
	kinds := make([]ErrorKind, errorKindCount)
	for i := range kinds {
		kinds[i] = ErrorKind(i)
	}
	return kinds
}

// Counters tallies decode and scheduling anomalies. Pending counts
// saturate rather than wrap and are zeroed by the reporter as it drains
// them; lifetime counts are monotonic for session statistics.
type Counters struct {
	pending  [errorKindCount]uint32
	lifetime [errorKindCount]uint64
}

// Count records one occurrence of the kind.
func (c *Counters) Count(k ErrorKind) { c.Add(k, 1) }

// Add records n occurrences of the kind.
func (c *Counters) Add(k ErrorKind, n int) {
	if n <= 0 || k < 0 || k >= errorKindCount {
		return
	}
	c.lifetime[k] += uint64(n)
	if room := uint32(math.MaxUint32) - c.pending[k]; uint32(n) > room {
		c.pending[k] = math.MaxUint32
	} else {
		c.pending[k] += uint32(n)
	}
}

// Pending returns the undrained count for the kind.
func (c *Counters) Pending(k ErrorKind) uint32 {
	if k < 0 || k >= errorKindCount {
		return 0
	}
	return c.pending[k]
}

// Zero clears the pending count for a kind after it has been reported.
func (c *Counters) Zero(k ErrorKind) {
	if k >= 0 && k < errorKindCount {
		c.pending[k] = 0
	}
}

// Lifetime returns the monotonic count for the kind.
func (c *Counters) Lifetime(k ErrorKind) uint64 {
	if k < 0 || k >= errorKindCount {
		return 0
	}
	return c.lifetime[k]
}

// ErrorEvents returns the lifetime total of anomaly events. DiscardedBytes
// is excluded because it counts bytes, not events.
func (c *Counters) ErrorEvents() uint64 {
	var total uint64
	for k := ErrorKind(0); k < errorKindCount; k++ {
		if k == DiscardedBytes {
			continue
		}
		total += c.lifetime[k]
	}
	return total
}

// Reset clears pending and lifetime counts.
func (c *Counters) Reset() {
	*c = Counters{}
}
