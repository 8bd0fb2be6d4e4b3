// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"io"
	"strconv"
)

// Sink is a non-blocking output channel. Free reports how many bytes can
// be written immediately; a well-behaved caller never writes more than
// that in a single call, and one call is one atomic write.
type Sink interface {
	Free() int
	io.Writer
}

// StepResult reports what a scheduler step accomplished.
type StepResult int

const (
	// StepIdle means there was nothing to emit.
	StepIdle StepResult = iota
	// StepBlocked means the next atomic write does not fit the sink yet.
	StepBlocked
	// StepProgressed means one atomic write was emitted.
	StepProgressed
)

func (r StepResult) String() string {
	switch r {
	case StepIdle:
		return "idle"
	case StepBlocked:
		return "blocked"
	case StepProgressed:
		return "progressed"
	default:
		return "unknown"
	}
}

// DiagnosticPrinter emits decoded values as newline-terminated lines of
// Name=value tokens, one token per step. A band update opens a line
// carrying all eight bands from a snapshot, followed by any fresh
// auxiliary channels; a fresh auxiliary on its own opens a short line.
// All cursors survive across calls, so a line may take many steps to
// finish on a slow sink. If a new band update lands before the previous
// line is finished, the update is absorbed and counted as SkippedUpdate.
type DiagnosticPrinter struct {
	store    *ValueStore
	counters *Counters

	bands     [BandCount]uint32
	active    bool
	bandCycle bool
	wrote     bool // at least one token already on the line
	next      int  // next band index; BandCount once bands are done
	buf       []byte
}

// NewDiagnosticPrinter creates a printer reading from store and tallying
// skipped updates into c.
func NewDiagnosticPrinter(store *ValueStore, c *Counters) *DiagnosticPrinter {
	return &DiagnosticPrinter{store: store, counters: c}
}

// LineOpen reports whether a line is partially emitted.
func (p *DiagnosticPrinter) LineOpen() bool { return p.active && p.wrote }

// Reset abandons any line in progress.
func (p *DiagnosticPrinter) Reset() {
	p.active = false
	p.bandCycle = false
	p.wrote = false
	p.next = 0
}

// Step emits at most one token, or the terminating newline, if it fits
// the sink.
func (p *DiagnosticPrinter) Step(sink Sink) StepResult {
	if p.active && p.bandCycle && p.store.BandsFresh() {
		// A newer band group landed before this line finished.
		p.counters.Count(SkippedUpdate)
		p.store.ClearBands()
	}

	if !p.active {
		switch {
		case p.store.BandsFresh():
			p.store.SnapshotBands(&p.bands)
			p.store.ClearBands()
			p.active = true
			p.bandCycle = true
			p.wrote = false
			p.next = 0
		case p.freshAux() >= 0:
			p.active = true
			p.bandCycle = false
			p.wrote = false
			p.next = BandCount
		default:
			return StepIdle
		}
	}

	p.buf = p.buf[:0]
	aux := Channel(-1)
	switch {
	case p.next < BandCount:
		if p.wrote {
			p.buf = append(p.buf, ' ')
		}
		p.buf = appendToken(p.buf, Channel(p.next).Name(), p.bands[p.next])
	default:
		if aux = p.freshAux(); aux >= 0 {
			if p.wrote {
				p.buf = append(p.buf, ' ')
			}
			p.buf = appendToken(p.buf, aux.Name(), p.store.Value(aux))
		} else {
			p.buf = append(p.buf, '\n')
		}
	}

	if sink.Free() < len(p.buf) {
		return StepBlocked
	}
	if _, err := sink.Write(p.buf); err != nil {
		return StepBlocked
	}

	switch {
	case p.next < BandCount:
		p.next++
	case aux >= 0:
		p.store.Clear(aux)
	default:
		// Newline written, line done.
		p.Reset()
		return StepProgressed
	}
	p.wrote = true
	return StepProgressed
}

// freshAux returns the first fresh non-band channel, or -1.
func (p *DiagnosticPrinter) freshAux() Channel {
	for ch := Channel(BandCount); ch < ChannelCount; ch++ {
		if p.store.Fresh(ch) {
			return ch
		}
	}
	return -1
}

func appendToken(buf []byte, name string, v uint32) []byte {
	buf = append(buf, name...)
	buf = append(buf, '=')
	return strconv.AppendUint(buf, uint64(v), 10)
}
