// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import "fmt"

// Frame assembly for simulators, capture tooling and tests. The decode
// path never depends on this file.

// EncodeFrame wraps a payload in sync, length and checksum framing.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}
	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, SyncByte, SyncByte, byte(len(payload)))
	frame = append(frame, payload...)
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return append(frame, ^sum), nil
}

// MustEncodeFrame is EncodeFrame for payloads known to fit.
func MustEncodeFrame(payload []byte) []byte {
	frame, err := EncodeFrame(payload)
	if err != nil {
		panic("thinkgear: " + err.Error())
	}
	return frame
}

// AppendByteField appends a single-byte field to a payload under
// construction.
func AppendByteField(payload []byte, code, value byte) []byte {
	return append(payload, code, value)
}

// AppendBands appends an EEGPower field. Values are truncated to 24 bits
// and at most BandCount bands are encoded.
func AppendBands(payload []byte, bands ...uint32) []byte {
	if len(bands) > BandCount {
		bands = bands[:BandCount]
	}
	payload = append(payload, CodeEEGPower, byte(len(bands)*bandBytes))
	for _, v := range bands {
		payload = append(payload, byte(v>>16), byte(v>>8), byte(v))
	}
	return payload
}

// AppendRawWave appends a RawWave block holding one signed 16-bit sample.
func AppendRawWave(payload []byte, sample int16) []byte {
	u := uint16(sample)
	return append(payload, CodeRawWave, 2, byte(u>>8), byte(u))
}
