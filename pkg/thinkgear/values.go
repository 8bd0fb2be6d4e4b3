// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"fmt"
	"math/bits"
	"strings"
)

// Channel identifies one tracked telemetry slot.
type Channel int

// Tracked channels. The first PlottedChannels entries, in this order, are
// also the plot column order. The remaining channels are tracked but never
// plotted.
const (
	ChannelDelta Channel = iota
	ChannelTheta
	ChannelLowAlpha
	ChannelHighAlpha
	ChannelLowBeta
	ChannelHighBeta
	ChannelLowGamma
	ChannelMidGamma
	ChannelMeditation
	ChannelAttention
	ChannelSignal
	ChannelHeartRate
	ChannelRawEight
	ChannelRawMarker
	ChannelCount
)

// PlottedChannels is the number of channels eligible for plot output.
const PlottedChannels = 11

var channelNames = [ChannelCount]string{
	"Delta", "Theta", "LowAlpha", "HighAlpha", "LowBeta", "HighBeta",
	"LowGamma", "MidGamma", "Meditation", "Attention", "Signal",
	"HeartRate", "Raw", "Marker",
}

// Name returns the display name of the channel.
func (c Channel) Name() string {
	if c < 0 || c >= ChannelCount {
		return "Unknown"
	}
	return channelNames[c]
}

// ParseChannel resolves a display name back to its channel. Matching is
// case-insensitive.
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if strings.EqualFold(name, n) {
			return Channel(i), true
		}
	}
	return 0, false
}

// ValueStore holds the latest decoded value of every channel together with
// a freshness flag. It has exactly one writer (the payload decoder) and
// one reader (the output scheduler), both on the same goroutine, so there
// is no locking anywhere.
type ValueStore struct {
	values [ChannelCount]uint32
	fresh  [ChannelCount]bool
}

// Set stores a value and marks the channel fresh.
func (s *ValueStore) Set(ch Channel, v uint32) {
	s.values[ch] = v
	s.fresh[ch] = true
}

// Value returns the latest value without touching freshness.
func (s *ValueStore) Value(ch Channel) uint32 { return s.values[ch] }

// Fresh reports whether the channel has an unconsumed update.
func (s *ValueStore) Fresh(ch Channel) bool { return s.fresh[ch] }

// Take returns the latest value and clears the freshness flag. The second
// result reports whether the value was fresh.
func (s *ValueStore) Take(ch Channel) (uint32, bool) {
	v, f := s.values[ch], s.fresh[ch]
	s.fresh[ch] = false
	return v, f
}

// Clear drops the freshness flag without reading the value.
func (s *ValueStore) Clear(ch Channel) { s.fresh[ch] = false }

// BandsFresh reports whether any EEG power band has an unconsumed update.
func (s *ValueStore) BandsFresh() bool {
	for ch := ChannelDelta; ch < Channel(BandCount); ch++ {
		if s.fresh[ch] {
			return true
		}
	}
	return false
}

// ClearBands drops the freshness flags of all EEG power bands.
func (s *ValueStore) ClearBands() {
	for ch := ChannelDelta; ch < Channel(BandCount); ch++ {
		s.fresh[ch] = false
	}
}

// SnapshotBands copies the current band values.
func (s *ValueStore) SnapshotBands(dst *[BandCount]uint32) {
	copy(dst[:], s.values[:BandCount])
}

// SnapshotPlotted copies the current values of all plottable channels.
func (s *ValueStore) SnapshotPlotted(dst *[PlottedChannels]uint32) {
	copy(dst[:], s.values[:PlottedChannels])
}

// Reset clears every value and freshness flag.
func (s *ValueStore) Reset() {
	*s = ValueStore{}
}

// Selection is a bit mask over the plottable channels.
type Selection uint16

const selectionMask Selection = 1<<PlottedChannels - 1

// SelectAll returns a selection with every plottable channel enabled.
func SelectAll() Selection { return selectionMask }

// Has reports whether the channel is selected.
func (s Selection) Has(ch Channel) bool {
	return ch >= 0 && int(ch) < PlottedChannels && s&(1<<uint(ch)) != 0
}

// Count returns the number of selected channels.
func (s Selection) Count() int {
	return bits.OnesCount16(uint16(s & selectionMask))
}

// Toggle returns the selection with the channel's membership flipped.
// Non-plottable channels are ignored.
func (s Selection) Toggle(ch Channel) Selection {
	if ch < 0 || int(ch) >= PlottedChannels {
		return s
	}
	return s ^ (1 << uint(ch))
}

// ParseSelection builds a selection from channel names. An empty list or
// the single name "all" selects every plottable channel.
func ParseSelection(names []string) (Selection, error) {
	if len(names) == 0 {
		return SelectAll(), nil
	}
	var s Selection
	for _, n := range names {
		n = strings.TrimSpace(n)
		if strings.EqualFold(n, "all") {
			return SelectAll(), nil
		}
		ch, ok := ParseChannel(n)
		if !ok || int(ch) >= PlottedChannels {
			return 0, fmt.Errorf("unknown channel %q", n)
		}
		s |= 1 << uint(ch)
	}
	return s, nil
}
