// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import "time"

// Mode selects the active output renderer.
type Mode int

const (
	// ModeDiagnostic emits Name=value lines plus counter reports.
	ModeDiagnostic Mode = iota
	// ModePlot emits tab-separated interpolation rows and stays silent
	// about anomalies.
	ModePlot
)

func (m Mode) String() string {
	switch m {
	case ModeDiagnostic:
		return "diagnostic"
	case ModePlot:
		return "plot"
	default:
		return "unknown"
	}
}

// ByteSource is a non-blocking input channel. Buffered reports how many
// bytes can be read immediately; ReadByte returns an error once the
// source is drained for now.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Controls supplies the operator inputs, polled once per tick.
type Controls interface {
	Mode() Mode
	Selection() Selection
}

// FixedControls is a Controls with constant values.
type FixedControls struct {
	DisplayMode Mode
	Channels    Selection
}

func (f FixedControls) Mode() Mode           { return f.DisplayMode }
func (f FixedControls) Selection() Selection { return f.Channels }

// Diagnostics holds observability figures maintained by the pump. They
// are never consulted by control flow.
type Diagnostics struct {
	// MaxBuffered is the largest input backlog seen at tick entry.
	MaxBuffered int
	// MaxTickGap is the longest pause between finishing one drain and
	// entering the next tick.
	MaxTickGap time.Duration
}

// Pump owns one decode pipeline and runs the cooperative tick: drain all
// buffered input, poll the controls, take at most one output step, and
// when that step was idle in diagnostic mode, at most one report step.
// Tick never blocks.
type Pump struct {
	src      ByteSource
	sink     Sink
	controls Controls

	counters Counters
	store    ValueStore
	frames   *FrameDecoder
	fields   *PayloadDecoder
	text     *DiagnosticPrinter
	plot     *PlotRenderer
	reporter *Reporter
	stats    *Statistics

	mode      Mode
	now       func() time.Time
	lastDrain time.Time
	diag      Diagnostics
}

// NewPump wires a complete pipeline. steps and height configure plot
// mode; see NewPlotRenderer for their bounds.
func NewPump(src ByteSource, sink Sink, controls Controls, steps, height int) *Pump {
	p := &Pump{src: src, sink: sink, controls: controls, now: time.Now}
	p.frames = NewFrameDecoder(&p.counters)
	p.fields = NewPayloadDecoder(&p.store, &p.counters)
	p.text = NewDiagnosticPrinter(&p.store, &p.counters)
	p.plot = NewPlotRenderer(&p.store, &p.counters, steps, height)
	p.reporter = NewReporter(&p.counters)
	p.stats = NewStatistics(&p.counters)
	p.mode = controls.Mode()
	p.plot.SetSelection(controls.Selection())
	return p
}

// Counters exposes the anomaly tallies.
func (p *Pump) Counters() *Counters { return &p.counters }

// Store exposes the decoded value store.
func (p *Pump) Store() *ValueStore { return &p.store }

// Stats exposes the session statistics.
func (p *Pump) Stats() *Statistics { return p.stats }

// Diagnostics returns a copy of the pump's observability figures.
func (p *Pump) Diagnostics() Diagnostics { return p.diag }

// Mode returns the mode currently driving output.
func (p *Pump) Mode() Mode { return p.mode }

// Tick runs one cooperative cycle.
func (p *Pump) Tick() {
	entry := p.now()
	if !p.lastDrain.IsZero() {
		if gap := entry.Sub(p.lastDrain); gap > p.diag.MaxTickGap {
			p.diag.MaxTickGap = gap
		}
	}
	if n := p.src.Buffered(); n > p.diag.MaxBuffered {
		p.diag.MaxBuffered = n
	}

	for {
		b, err := p.src.ReadByte()
		if err != nil {
			break
		}
		p.stats.AddBytes(1)
		if payload := p.frames.Feed(b); payload != nil {
			p.stats.AddFrame()
			p.fields.Decode(payload)
		}
	}
	p.lastDrain = p.now()

	// Mode switches wait for an open diagnostic line to terminate so the
	// two output grammars never interleave on one line.
	if m := p.controls.Mode(); m != p.mode && !p.text.LineOpen() {
		p.mode = m
		p.text.Reset()
		p.plot.Reset()
	}
	p.plot.SetSelection(p.controls.Selection())

	var res StepResult
	if p.mode == ModePlot {
		res = p.plot.Step(p.sink)
	} else {
		res = p.text.Step(p.sink)
	}

	if p.mode == ModeDiagnostic && res == StepIdle {
		p.reporter.Step(p.sink)
	}
}
