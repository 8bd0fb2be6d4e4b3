// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

// PayloadDecoder applies the fields of a checksum-valid payload to the
// value store. Decoding aborts at the first structural violation: the
// violation is tallied, the remainder of the payload is counted into
// DiscardedBytes, and fields already applied stay applied.
type PayloadDecoder struct {
	store    *ValueStore
	counters *Counters
}

// NewPayloadDecoder creates a decoder writing into store and tallying
// anomalies into c.
func NewPayloadDecoder(store *ValueStore, c *Counters) *PayloadDecoder {
	return &PayloadDecoder{store: store, counters: c}
}

// Decode walks the payload front to back.
func (p *PayloadDecoder) Decode(payload []byte) {
	i := 0
	for i < len(payload) {
		switch code := payload[i]; code {
		case CodePoorSignal, CodeHeartRate, CodeAttention, CodeMeditation,
			CodeRawEight, CodeRawMarker:
			if i+1 >= len(payload) {
				p.abort(payload, i, ReadPastPayloadEnd)
				return
			}
			p.store.Set(channelForCode(code), uint32(payload[i+1]))
			i += 2

		case CodeRawWave:
			if i+1 >= len(payload) {
				p.abort(payload, i, ReadPastPayloadEnd)
				return
			}
			n := int(payload[i+1])
			if i+2+n > len(payload) {
				p.abort(payload, i, RawPayloadTooBig)
				return
			}
			// Raw wave samples are skipped, not stored.
			i += 2 + n

		case CodeEEGPower:
			if i+1 >= len(payload) {
				p.abort(payload, i, ReadPastPayloadEnd)
				return
			}
			n := int(payload[i+1])
			if n > maxEEGPowerSize || n%bandBytes != 0 || i+2+n > len(payload) {
				p.abort(payload, i, EEGBadLength)
				return
			}
			for band := 0; band < n/bandBytes; band++ {
				off := i + 2 + band*bandBytes
				v := uint32(payload[off])<<16 |
					uint32(payload[off+1])<<8 |
					uint32(payload[off+2])
				p.store.Set(ChannelDelta+Channel(band), v)
			}
			i += 2 + n

		default:
			p.abort(payload, i, UnrecognizedCode)
			return
		}
	}
}

// abort tallies the violation and discards the rest of the payload,
// starting at the offending field's code byte.
func (p *PayloadDecoder) abort(payload []byte, off int, kind ErrorKind) {
	p.counters.Count(kind)
	p.counters.Add(DiscardedBytes, len(payload)-off)
}

func channelForCode(code byte) Channel {
	switch code {
	case CodePoorSignal:
		return ChannelSignal
	case CodeHeartRate:
		return ChannelHeartRate
	case CodeAttention:
		return ChannelAttention
	case CodeMeditation:
		return ChannelMeditation
	case CodeRawEight:
		return ChannelRawEight
	default:
		return ChannelRawMarker
	}
}
