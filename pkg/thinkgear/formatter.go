// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"fmt"
	"strings"
	"time"
)

// FormatFrame formats a checksum-valid payload into a human-readable
// multi-line string: a header with timestamp and length, then one line
// per field. Structurally damaged tails are hex dumped instead of being
// silently dropped, so the display side never hides bytes the decode
// side would discard.
func FormatFrame(payload []byte, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] FRAME len=%d\n", at.Format("15:04:05.000"), len(payload))

	i := 0
	for i < len(payload) {
		code := payload[i]
		switch code {
		case CodePoorSignal, CodeHeartRate, CodeAttention, CodeMeditation,
			CodeRawEight, CodeRawMarker:
			if i+1 >= len(payload) {
				return b.String() + formatDamage(payload[i:], "truncated field")
			}
			fmt.Fprintf(&b, "  %s: %d\n", FormatFieldCode(code), payload[i+1])
			i += 2

		case CodeRawWave:
			if i+1 >= len(payload) {
				return b.String() + formatDamage(payload[i:], "truncated field")
			}
			n := int(payload[i+1])
			if i+2+n > len(payload) {
				return b.String() + formatDamage(payload[i:], "raw block past end")
			}
			if n == 2 {
				sample := int16(uint16(payload[i+2])<<8 | uint16(payload[i+3]))
				fmt.Fprintf(&b, "  %s: %d\n", FormatFieldCode(code), sample)
			} else {
				fmt.Fprintf(&b, "  %s: %d bytes\n", FormatFieldCode(code), n)
			}
			i += 2 + n

		case CodeEEGPower:
			if i+1 >= len(payload) {
				return b.String() + formatDamage(payload[i:], "truncated field")
			}
			n := int(payload[i+1])
			if n > maxEEGPowerSize || n%bandBytes != 0 || i+2+n > len(payload) {
				return b.String() + formatDamage(payload[i:], "bad EEG power length")
			}
			fmt.Fprintf(&b, "  %s:", FormatFieldCode(code))
			for band := 0; band < n/bandBytes; band++ {
				off := i + 2 + band*bandBytes
				v := uint32(payload[off])<<16 |
					uint32(payload[off+1])<<8 |
					uint32(payload[off+2])
				fmt.Fprintf(&b, " %s=%d", Channel(band).Name(), v)
			}
			b.WriteString("\n")
			i += 2 + n

		default:
			return b.String() + formatDamage(payload[i:], fmt.Sprintf("unknown code 0x%02X", code))
		}
	}
	return b.String()
}

// FormatFieldCode returns the human-readable name for a field code.
func FormatFieldCode(code byte) string {
	switch code {
	case CodePoorSignal:
		return "POOR_SIGNAL"
	case CodeHeartRate:
		return "HEART_RATE"
	case CodeAttention:
		return "ATTENTION"
	case CodeMeditation:
		return "MEDITATION"
	case CodeRawEight:
		return "RAW_EIGHT"
	case CodeRawMarker:
		return "RAW_MARKER"
	case CodeRawWave:
		return "RAW_WAVE"
	case CodeEEGPower:
		return "EEG_POWER"
	default:
		return "UNKNOWN"
	}
}

// formatDamage hex dumps the undecodable remainder of a payload.
func formatDamage(rest []byte, reason string) string {
	result := fmt.Sprintf("  (%s) ", reason)
	for i, b := range rest {
		if i > 0 && i%16 == 0 {
			result += "\n             "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
