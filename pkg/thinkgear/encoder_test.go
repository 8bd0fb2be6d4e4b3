// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"bytes"
	"testing"
)

// ============================================================
// Frame Encoder Tests
// ============================================================

func TestEncodeFrame_Framing(t *testing.T) {
	frame, err := EncodeFrame([]byte{0x04, 0x2A})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	want := []byte{0xAA, 0xAA, 0x02, 0x04, 0x2A, 0xD1}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame mismatch:\n got % X\nwant % X", frame, want)
	}
}

func TestEncodeFrame_EmptyPayload(t *testing.T) {
	frame, err := EncodeFrame(nil)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	want := []byte{0xAA, 0xAA, 0x00, 0xFF}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame mismatch:\n got % X\nwant % X", frame, want)
	}
}

func TestEncodeFrame_MaxPayload(t *testing.T) {
	if _, err := EncodeFrame(make([]byte, MaxPayloadSize)); err != nil {
		t.Errorf("a %d-byte payload should encode: %v", MaxPayloadSize, err)
	}
	if _, err := EncodeFrame(make([]byte, MaxPayloadSize+1)); err == nil {
		t.Error("an oversized payload should be rejected")
	}
}

func TestMustEncodeFrame_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustEncodeFrame should panic on an oversized payload")
		}
	}()
	MustEncodeFrame(make([]byte, MaxPayloadSize+1))
}

func TestAppendByteField(t *testing.T) {
	payload := AppendByteField(nil, CodeAttention, 42)
	payload = AppendByteField(payload, CodeMeditation, 57)

	want := []byte{0x04, 42, 0x05, 57}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload mismatch:\n got % X\nwant % X", payload, want)
	}
}

func TestAppendBands_Encoding(t *testing.T) {
	payload := AppendBands(nil, 0x010203, 0xFFFFFF)

	want := []byte{CodeEEGPower, 6, 0x01, 0x02, 0x03, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload mismatch:\n got % X\nwant % X", payload, want)
	}
}

func TestAppendBands_TruncatesToBandCount(t *testing.T) {
	vals := make([]uint32, BandCount+3)
	payload := AppendBands(nil, vals...)

	if got := int(payload[1]); got != BandCount*bandBytes {
		t.Errorf("declared length = %d, expected %d", got, BandCount*bandBytes)
	}
}

func TestAppendBands_TruncatesTo24Bits(t *testing.T) {
	payload := AppendBands(nil, 0x01ABCDEF)

	want := []byte{CodeEEGPower, 3, 0xAB, 0xCD, 0xEF}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload mismatch:\n got % X\nwant % X", payload, want)
	}
}

func TestAppendRawWave(t *testing.T) {
	payload := AppendRawWave(nil, -2)

	want := []byte{CodeRawWave, 2, 0xFF, 0xFE}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload mismatch:\n got % X\nwant % X", payload, want)
	}
}

func TestEncodeFrame_RoundTrip(t *testing.T) {
	payload := AppendByteField(nil, CodePoorSignal, 26)
	payload = AppendRawWave(payload, 1234)
	payload = AppendBands(payload, 1, 2, 3, 4, 5, 6, 7, 8)
	payload = AppendByteField(payload, CodeAttention, 42)

	var c Counters
	d := NewFrameDecoder(&c)
	delivered := feedAll(d, MustEncodeFrame(payload))

	if len(delivered) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(delivered))
	}
	if !bytes.Equal(delivered[0], payload) {
		t.Errorf("round trip mismatch:\n got % X\nwant % X", delivered[0], payload)
	}
	for _, k := range ErrorKinds() {
		if c.Pending(k) != 0 {
			t.Errorf("counter %s = %d, expected 0", k, c.Pending(k))
		}
	}
}
