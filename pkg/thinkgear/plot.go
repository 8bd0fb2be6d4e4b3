// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

// Plot geometry bounds.
const (
	MinPlotSteps  = 5
	MaxPlotSteps  = 10
	MinPlotHeight = 110
	MaxPlotHeight = 1 << 20

	DefaultPlotSteps  = 8
	DefaultPlotHeight = 1000
)

// Clamp bounds v to the range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlotRenderer emits tab-separated numeric rows for a serial-plotter
// style consumer. Each completed band update becomes a plotting cycle of
// N interpolation rows walking every selected channel from its previous
// snapshot to the new one inside its own vertical stripe. Per-channel
// bounds only ever widen over a run, so traces never rescale backwards.
// Unselected channels emit a literal zero and claim no stripe.
type PlotRenderer struct {
	store    *ValueStore
	counters *Counters
	steps    int
	height   int
	selected Selection

	active   bool
	k        int
	haveBase bool
	base     [PlottedChannels]int
	target   [PlottedChannels]int

	seen [PlottedChannels]bool
	low  [PlottedChannels]uint32
	high [PlottedChannels]uint32 // one past the largest observed value

	buf []byte
}

// NewPlotRenderer creates a renderer with the given interpolation step
// count and total display height. Out-of-range arguments are clamped.
func NewPlotRenderer(store *ValueStore, c *Counters, steps, height int) *PlotRenderer {
	return &PlotRenderer{
		store:    store,
		counters: c,
		steps:    Clamp(steps, MinPlotSteps, MaxPlotSteps),
		height:   Clamp(height, MinPlotHeight, MaxPlotHeight),
		selected: SelectAll(),
	}
}

// Steps returns the interpolation step count per cycle.
func (r *PlotRenderer) Steps() int { return r.steps }

// Height returns the total display height.
func (r *PlotRenderer) Height() int { return r.height }

// SetSelection replaces the channel selection. It takes effect at the
// next plotting cycle; a cycle in flight keeps its stripe layout.
func (r *PlotRenderer) SetSelection(s Selection) { r.selected = s & selectionMask }

// Reset abandons the cycle in flight. Bounds and the interpolation
// baseline persist.
func (r *PlotRenderer) Reset() {
	r.active = false
	r.k = 0
}

// Step emits at most one interpolation row if it fits the sink.
func (r *PlotRenderer) Step(sink Sink) StepResult {
	if r.active && r.store.BandsFresh() {
		// A newer band group landed before this cycle finished.
		r.counters.Count(SkippedUpdate)
		r.store.ClearBands()
	}

	if !r.active {
		if !r.store.BandsFresh() {
			return StepIdle
		}
		r.begin()
	}

	r.buf = r.appendRow(r.buf[:0], r.k)
	if sink.Free() < len(r.buf) {
		return StepBlocked
	}
	if _, err := sink.Write(r.buf); err != nil {
		return StepBlocked
	}

	if r.k >= r.steps {
		// The snapshot becomes the next cycle's interpolation baseline.
		r.base = r.target
		r.active = false
	} else {
		r.k++
	}
	return StepProgressed
}

// begin opens a plotting cycle: snapshot the store, widen bounds, and
// rescale every selected channel into its stripe.
func (r *PlotRenderer) begin() {
	var snap [PlottedChannels]uint32
	r.store.SnapshotPlotted(&snap)
	r.store.ClearBands()

	for i, v := range snap {
		if !r.seen[i] {
			r.low[i], r.high[i] = v, v+1
			r.seen[i] = true
			continue
		}
		if v < r.low[i] {
			r.low[i] = v
		}
		if v >= r.high[i] {
			r.high[i] = v + 1
		}
	}

	lanes := r.selected.Count()
	lane := 0
	for i := range snap {
		if lanes == 0 || !r.selected.Has(Channel(i)) {
			// Unselected channels hold a flat zero, never a ramp.
			r.base[i] = 0
			r.target[i] = 0
			continue
		}
		stripe := r.height / lanes
		usable := stripe - stripe/10
		span := r.high[i] - r.low[i]
		r.target[i] = lane*stripe +
			int(uint64(snap[i]-r.low[i])*uint64(usable)/uint64(span))
		lane++
	}

	if !r.haveBase {
		r.base = r.target
		r.haveBase = true
	}
	r.k = 1
	r.active = true
}

// appendRow formats the row for interpolation step k: the plotted channel
// columns followed by a constant reference column, tab separated.
func (r *PlotRenderer) appendRow(buf []byte, k int) []byte {
	for i := 0; i < PlottedChannels; i++ {
		v := ((r.steps-k)*r.base[i] + k*r.target[i]) / r.steps
		buf = strconv.AppendInt(buf, int64(v), 10)
		buf = append(buf, '\t')
	}
	// The reference column pins the plotter's vertical scale.
	buf = strconv.AppendInt(buf, int64(r.height), 10)
	return append(buf, '\n')
}
