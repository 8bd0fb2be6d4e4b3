// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

// FrameDecoder implements the frame layer state machine. Bytes go in one
// at a time; checksum-valid payloads come out. The decoder never blocks
// and never returns an error: framing damage is tallied in the shared
// Counters and the stream is re-hunted for the next sync pair. Decoding
// is chunk-invariant, so it does not matter how the input stream is
// sliced across calls.
type FrameDecoder struct {
	state    int
	expected int
	count    int
	sum      byte
	payload  [MaxPayloadSize]byte
	counters *Counters
}

// NewFrameDecoder creates a decoder that tallies anomalies into c.
func NewFrameDecoder(c *Counters) *FrameDecoder {
	return &FrameDecoder{state: stateFirstSync, counters: c}
}

// Reset returns the decoder to hunting for a sync pair.
func (d *FrameDecoder) Reset() {
	d.state = stateFirstSync
	d.expected = 0
	d.count = 0
	d.sum = 0
}

// Feed advances the state machine by one byte. It returns the completed,
// checksum-valid payload, or nil while a frame is in flight or was
// rejected. The returned slice aliases the decoder's buffer and is only
// valid until the next call to Feed.
func (d *FrameDecoder) Feed(b byte) []byte {
	switch d.state {
	case stateFirstSync:
		if b == SyncByte {
			d.state = stateSecondSync
			return nil
		}
		d.counters.Count(MissingSync)
		d.counters.Add(DiscardedBytes, 1)

	case stateSecondSync:
		if b == SyncByte {
			d.state = stateLength
			return nil
		}
		d.counters.Count(MissingSync)
		d.counters.Add(DiscardedBytes, 2)
		d.state = stateFirstSync

	case stateLength:
		if int(b) <= MaxPayloadSize {
			d.expected = int(b)
			d.count = 0
			d.sum = 0
			d.state = statePayload
			return nil
		}
		d.counters.Count(BadPayloadLength)
		if b == SyncByte {
			// Three sync bytes in a row. Treat this one as padding and
			// keep waiting for the real length.
			d.counters.Add(DiscardedBytes, 1)
			return nil
		}
		d.counters.Add(DiscardedBytes, 2)
		d.state = stateFirstSync

	case statePayload:
		if d.count < d.expected {
			// Sync bytes inside a payload are data, not framing.
			d.payload[d.count] = b
			d.count++
			d.sum += b
			return nil
		}
		// The byte after the payload is the inverted checksum.
		d.state = stateFirstSync
		if ^b == d.sum {
			return d.payload[:d.expected]
		}
		d.counters.Count(BadChecksum)
		d.counters.Add(DiscardedBytes, d.expected+4)
	}
	return nil
}
