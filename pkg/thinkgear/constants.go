// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

// Package thinkgear implements the ThinkGear serial protocol spoken by
// NeuroSky EEG headsets (MindWave, MindFlex and similar devices).
//
// The package provides a resumable frame decoder, payload field decoding
// into a single-writer value store, and bounded-latency output scheduling
// for rate-limited text channels. Damaged input never raises Go errors:
// every anomaly lands in a closed set of saturating counters that a
// low-priority reporter drains between value updates.
package thinkgear

// Protocol framing. A frame is two sync bytes, a payload length, the
// payload, and an inverted-sum checksum.
const (
	SyncByte       = 0xAA
	MaxPayloadSize = 169
)

// BandCount is the number of EEG power bands carried by an EEGPower field,
// in wire order: delta, theta, low-alpha, high-alpha, low-beta, high-beta,
// low-gamma, mid-gamma.
const BandCount = 8

// Field codes below 0x80 carry a single value byte.
const (
	CodePoorSignal = 0x02
	CodeHeartRate  = 0x03
	CodeAttention  = 0x04
	CodeMeditation = 0x05
	CodeRawEight   = 0x06
	CodeRawMarker  = 0x07
)

// Field codes 0x80 and above carry a length byte followed by that many
// data bytes.
const (
	CodeRawWave  = 0x80
	CodeEEGPower = 0x83
)

// EEGPower field geometry. Each band is an unsigned big-endian 24-bit
// value; a field may carry fewer than BandCount bands but never a partial
// one.
const (
	bandBytes       = 3
	maxEEGPowerSize = BandCount * bandBytes
)

// Decoder states (internal)
const (
	stateFirstSync = iota
	stateSecondSync
	stateLength
	statePayload
)
