// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
)

// ============================================================
// Test Helpers
// ============================================================

// testSink is a Sink with adjustable capacity that records everything
// written to it. Capacity is consumed by writes and never refills on its
// own, so a renderer that ignores Free drives free negative.
type testSink struct {
	free int
	data []byte
}

func (s *testSink) Free() int { return s.free }

func (s *testSink) Write(p []byte) (int, error) {
	s.free -= len(p)
	s.data = append(s.data, p...)
	return len(p), nil
}

// byteQueue is a ByteSource fed from a slice.
type byteQueue struct {
	data []byte
}

func (q *byteQueue) push(p []byte) { q.data = append(q.data, p...) }

func (q *byteQueue) Buffered() int { return len(q.data) }

func (q *byteQueue) ReadByte() (byte, error) {
	if len(q.data) == 0 {
		return 0, io.EOF
	}
	b := q.data[0]
	q.data = q.data[1:]
	return b, nil
}

// testControls is a Controls whose values can change between ticks.
type testControls struct {
	mode Mode
	sel  Selection
}

func (c *testControls) Mode() Mode           { return c.mode }
func (c *testControls) Selection() Selection { return c.sel }

// setBands marks all eight bands fresh with the given base value pattern.
func setBands(s *ValueStore, base uint32) {
	for i := 0; i < BandCount; i++ {
		s.Set(ChannelDelta+Channel(i), base+uint32(i))
	}
}

// ============================================================
// Step Result and Mode Tests
// ============================================================

func TestStepResult_String(t *testing.T) {
	tests := []struct {
		res      StepResult
		expected string
	}{
		{StepIdle, "idle"},
		{StepBlocked, "blocked"},
		{StepProgressed, "progressed"},
		{StepResult(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.res.String(); got != tt.expected {
			t.Errorf("String() = %s, expected %s", got, tt.expected)
		}
	}
}

func TestMode_String(t *testing.T) {
	if got := ModeDiagnostic.String(); got != "diagnostic" {
		t.Errorf("ModeDiagnostic.String() = %s", got)
	}
	if got := ModePlot.String(); got != "plot" {
		t.Errorf("ModePlot.String() = %s", got)
	}
	if got := Mode(9).String(); got != "unknown" {
		t.Errorf("out-of-range String() = %s", got)
	}
}

// ============================================================
// Diagnostic Printer Tests
// ============================================================

func TestDiagnosticPrinter_IdleWithoutData(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	if res := p.Step(sink); res != StepIdle {
		t.Errorf("Step = %s, expected idle", res)
	}
	if len(sink.data) != 0 {
		t.Errorf("idle step wrote %q", sink.data)
	}
}

func TestDiagnosticPrinter_SingleAuxLine(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	store.Set(ChannelAttention, 42)

	if res := p.Step(sink); res != StepProgressed {
		t.Fatalf("step 1 = %s, expected progressed", res)
	}
	if got := string(sink.data); got != "Attention=42" {
		t.Errorf("after step 1: %q", got)
	}
	if !p.LineOpen() {
		t.Error("line should be open after the first token")
	}

	if res := p.Step(sink); res != StepProgressed {
		t.Fatalf("step 2 = %s, expected progressed", res)
	}
	if got := string(sink.data); got != "Attention=42\n" {
		t.Errorf("after step 2: %q", got)
	}
	if p.LineOpen() {
		t.Error("line should be closed after the newline")
	}

	if res := p.Step(sink); res != StepIdle {
		t.Errorf("step 3 = %s, expected idle", res)
	}
}

func TestDiagnosticPrinter_BandLine(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 100)

	// Eight tokens plus the terminating newline.
	for i := 0; i < 9; i++ {
		if res := p.Step(sink); res != StepProgressed {
			t.Fatalf("step %d = %s, expected progressed", i+1, res)
		}
	}

	want := "Delta=100 Theta=101 LowAlpha=102 HighAlpha=103 " +
		"LowBeta=104 HighBeta=105 LowGamma=106 MidGamma=107\n"
	if got := string(sink.data); got != want {
		t.Errorf("band line mismatch:\n got %q\nwant %q", got, want)
	}
	if store.BandsFresh() {
		t.Error("band freshness should be consumed by the snapshot")
	}
}

func TestDiagnosticPrinter_AuxAfterBands(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 0)
	store.Set(ChannelMeditation, 50)
	store.Set(ChannelAttention, 42)

	// Eight band tokens, two aux tokens, one newline.
	for i := 0; i < 11; i++ {
		if res := p.Step(sink); res != StepProgressed {
			t.Fatalf("step %d = %s, expected progressed", i+1, res)
		}
	}

	got := string(sink.data)
	if !strings.HasSuffix(got, "MidGamma=7 Meditation=50 Attention=42\n") {
		t.Errorf("aux tokens missing or misordered: %q", got)
	}
	if store.Fresh(ChannelMeditation) || store.Fresh(ChannelAttention) {
		t.Error("emitted aux channels should no longer be fresh")
	}
}

func TestDiagnosticPrinter_BlockedKeepsCursor(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 3}

	store.Set(ChannelAttention, 42)

	if res := p.Step(sink); res != StepBlocked {
		t.Fatalf("step = %s, expected blocked", res)
	}
	if len(sink.data) != 0 {
		t.Errorf("blocked step wrote %q", sink.data)
	}

	sink.free = 1 << 20
	if res := p.Step(sink); res != StepProgressed {
		t.Fatalf("retry = %s, expected progressed", res)
	}
	if got := string(sink.data); got != "Attention=42" {
		t.Errorf("after retry: %q", got)
	}
}

func TestDiagnosticPrinter_NeverOverdrawsSink(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)

	setBands(&store, 123456)
	store.Set(ChannelAttention, 100)

	// Tiny capacity: most steps block, progress trickles out.
	sink := &testSink{free: 2}
	for i := 0; i < 500; i++ {
		p.Step(sink)
		if sink.free < 0 {
			t.Fatalf("sink overdrawn at step %d", i)
		}
		sink.free += 2
	}
	if !strings.HasSuffix(string(sink.data), "\n") {
		t.Errorf("line never finished: %q", sink.data)
	}
}

func TestDiagnosticPrinter_SkippedUpdate(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 100)
	p.Step(sink) // opens the line with the 100-series snapshot

	// A newer band group lands mid-line.
	setBands(&store, 200)

	for i := 0; i < 8; i++ {
		p.Step(sink)
	}

	if got := c.Pending(SkippedUpdate); got != 1 {
		t.Errorf("SkippedUpdate = %d, expected 1", got)
	}
	got := string(sink.data)
	if !strings.Contains(got, "Delta=100") || strings.Contains(got, "Delta=200") {
		t.Errorf("line must keep the original snapshot: %q", got)
	}
	if store.BandsFresh() {
		t.Error("the skipped update should be absorbed")
	}
}

func TestDiagnosticPrinter_Reset(t *testing.T) {
	var store ValueStore
	var c Counters
	p := NewDiagnosticPrinter(&store, &c)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 0)
	p.Step(sink)
	if !p.LineOpen() {
		t.Fatal("line should be open")
	}

	p.Reset()
	if p.LineOpen() {
		t.Error("Reset should abandon the line")
	}
	if res := p.Step(sink); res != StepIdle {
		t.Errorf("step after Reset = %s, expected idle", res)
	}
}

// ============================================================
// Plot Renderer Tests
// ============================================================

func TestPlotRenderer_ClampsGeometry(t *testing.T) {
	var store ValueStore
	var c Counters

	r := NewPlotRenderer(&store, &c, 1, 1)
	if r.Steps() != MinPlotSteps || r.Height() != MinPlotHeight {
		t.Errorf("low clamp = (%d, %d)", r.Steps(), r.Height())
	}

	r = NewPlotRenderer(&store, &c, 99, 1<<30)
	if r.Steps() != MaxPlotSteps || r.Height() != MaxPlotHeight {
		t.Errorf("high clamp = (%d, %d)", r.Steps(), r.Height())
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 10); got != 5 {
		t.Errorf("Clamp(5,1,10) = %d", got)
	}
	if got := Clamp(-1, 1, 10); got != 1 {
		t.Errorf("Clamp(-1,1,10) = %d", got)
	}
	if got := Clamp(11, 1, 10); got != 10 {
		t.Errorf("Clamp(11,1,10) = %d", got)
	}
}

func TestPlotRenderer_IdleWithoutBands(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	// Aux freshness alone never opens a plotting cycle.
	store.Set(ChannelAttention, 42)

	if res := r.Step(sink); res != StepIdle {
		t.Errorf("Step = %s, expected idle", res)
	}
}

func TestPlotRenderer_FirstCycleStripes(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 100)

	for i := 0; i < 5; i++ {
		if res := r.Step(sink); res != StepProgressed {
			t.Fatalf("step %d = %s, expected progressed", i+1, res)
		}
	}
	if res := r.Step(sink); res != StepIdle {
		t.Errorf("step after the cycle = %s, expected idle", res)
	}

	// First sight of every channel pins it to the bottom of its stripe:
	// 11 lanes over height 1000 makes stripe 90, so lane floors ascend in
	// steps of 90 and the reference column pins the top.
	want := "0\t90\t180\t270\t360\t450\t540\t630\t720\t810\t900\t1000\n"
	rows := strings.SplitAfter(string(sink.data), "\n")
	if len(rows) != 6 || rows[5] != "" {
		t.Fatalf("expected 5 rows, got %q", sink.data)
	}
	for i, row := range rows[:5] {
		if row != want {
			t.Errorf("row %d = %q, expected %q", i+1, row, want)
		}
	}
}

func TestPlotRenderer_SingleChannelInterpolation(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	sel, err := ParseSelection([]string{"Delta"})
	if err != nil {
		t.Fatal(err)
	}
	r.SetSelection(sel)

	// Cycle 1 establishes a zero baseline.
	setBands(&store, 0)
	for i := 0; i < 5; i++ {
		r.Step(sink)
	}
	sink.data = nil

	// Cycle 2 walks Delta from the baseline to its new position. With
	// bounds [0,101) and a 900-point usable stripe the target is
	// 100*900/101 = 891.
	store.Set(ChannelDelta, 100)
	for i := 0; i < 5; i++ {
		if res := r.Step(sink); res != StepProgressed {
			t.Fatalf("step %d = %s, expected progressed", i+1, res)
		}
	}

	rows := strings.Split(strings.TrimSuffix(string(sink.data), "\n"), "\n")
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d: %q", len(rows), sink.data)
	}
	wantDelta := []string{"178", "356", "534", "712", "891"}
	for i, row := range rows {
		cols := strings.Split(row, "\t")
		if len(cols) != PlottedChannels+1 {
			t.Fatalf("row %d has %d columns: %q", i+1, len(cols), row)
		}
		if cols[0] != wantDelta[i] {
			t.Errorf("row %d Delta = %s, expected %s", i+1, cols[0], wantDelta[i])
		}
		for j := 1; j < PlottedChannels; j++ {
			if cols[j] != "0" {
				t.Errorf("row %d column %d = %s, unselected channels emit 0", i+1, j, cols[j])
			}
		}
		if cols[PlottedChannels] != "1000" {
			t.Errorf("row %d reference column = %s, expected 1000", i+1, cols[PlottedChannels])
		}
	}
}

func TestPlotRenderer_RowFormula(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)

	r.base[0] = 100
	r.target[0] = 600

	want := []int{200, 300, 400, 500, 600}
	for k := 1; k <= 5; k++ {
		row := string(r.appendRow(nil, k))
		cols := strings.Split(strings.TrimSuffix(row, "\n"), "\t")
		if got := cols[0]; got != strconv.Itoa(want[k-1]) {
			t.Errorf("k=%d: column = %s, expected %d", k, got, want[k-1])
		}
	}
}

func TestPlotRenderer_BoundsOnlyWiden(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	feed := func(v uint32) {
		store.Set(ChannelDelta, v)
		for i := 0; i < 5; i++ {
			r.Step(sink)
		}
	}

	feed(1000)
	if r.low[0] != 1000 || r.high[0] != 1001 {
		t.Errorf("bounds after 1000 = [%d, %d)", r.low[0], r.high[0])
	}
	feed(0)
	if r.low[0] != 0 || r.high[0] != 1001 {
		t.Errorf("bounds after 0 = [%d, %d)", r.low[0], r.high[0])
	}
	feed(500)
	if r.low[0] != 0 || r.high[0] != 1001 {
		t.Errorf("bounds must not shrink, got [%d, %d)", r.low[0], r.high[0])
	}
}

func TestPlotRenderer_EmptySelection(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	r.SetSelection(0)
	setBands(&store, 12345)

	for i := 0; i < 5; i++ {
		if res := r.Step(sink); res != StepProgressed {
			t.Fatalf("step %d = %s, expected progressed", i+1, res)
		}
	}

	rows := strings.Split(strings.TrimSuffix(string(sink.data), "\n"), "\n")
	for _, row := range rows {
		if row != strings.Repeat("0\t", PlottedChannels)+"1000" {
			t.Errorf("empty selection row = %q", row)
		}
	}
}

func TestPlotRenderer_BlockedKeepsRow(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 10}

	setBands(&store, 0)

	if res := r.Step(sink); res != StepBlocked {
		t.Fatalf("step = %s, expected blocked", res)
	}
	if len(sink.data) != 0 {
		t.Errorf("blocked step wrote %q", sink.data)
	}

	sink.free = 1 << 20
	for i := 0; i < 5; i++ {
		if res := r.Step(sink); res != StepProgressed {
			t.Fatalf("retry %d = %s, expected progressed", i+1, res)
		}
	}
	if got := strings.Count(string(sink.data), "\n"); got != 5 {
		t.Errorf("cycle emitted %d rows, expected 5", got)
	}
}

func TestPlotRenderer_SkippedUpdate(t *testing.T) {
	var store ValueStore
	var c Counters
	r := NewPlotRenderer(&store, &c, 5, 1000)
	sink := &testSink{free: 1 << 20}

	setBands(&store, 100)
	r.Step(sink) // opens the cycle

	setBands(&store, 200)
	for i := 0; i < 4; i++ {
		r.Step(sink)
	}

	if got := c.Pending(SkippedUpdate); got != 1 {
		t.Errorf("SkippedUpdate = %d, expected 1", got)
	}
	if store.BandsFresh() {
		t.Error("the skipped update should be absorbed")
	}
	if got := strings.Count(string(sink.data), "\n"); got != 5 {
		t.Errorf("cycle emitted %d rows, expected 5", got)
	}
}

// ============================================================
// Reporter Tests
// ============================================================

func TestReporter_IdleWhenNothingPending(t *testing.T) {
	var c Counters
	r := NewReporter(&c)
	sink := &testSink{free: 1 << 20}

	if res := r.Step(sink); res != StepIdle {
		t.Errorf("Step = %s, expected idle", res)
	}
}

func TestReporter_ReportFormat(t *testing.T) {
	var c Counters
	r := NewReporter(&c)
	sink := &testSink{free: 1 << 20}

	c.Add(BadChecksum, 2)

	if res := r.Step(sink); res != StepProgressed {
		t.Fatalf("Step = %s, expected progressed", res)
	}
	if got := string(sink.data); got != "#BadChecksum=2\n" {
		t.Errorf("report = %q", got)
	}
	if c.Pending(BadChecksum) != 0 {
		t.Error("reported counter should be zeroed")
	}
	if c.Lifetime(BadChecksum) != 2 {
		t.Error("lifetime count should survive the report")
	}
}

func TestReporter_RoundRobin(t *testing.T) {
	var c Counters
	r := NewReporter(&c)
	sink := &testSink{free: 1 << 20}

	c.Count(MissingSync)
	c.Count(SkippedUpdate)

	r.Step(sink)
	c.Count(MissingSync) // lands again before the next step
	r.Step(sink)
	r.Step(sink)

	want := "#MissingSync=1\n#SkippedUpdate=1\n#MissingSync=1\n"
	if got := string(sink.data); got != want {
		t.Errorf("report order:\n got %q\nwant %q", got, want)
	}
}

func TestReporter_BlockedBelowWorstCase(t *testing.T) {
	var c Counters
	r := NewReporter(&c)

	if want := len("ReadPastPayloadEnd") + 13; r.need != want {
		t.Errorf("need = %d, expected %d", r.need, want)
	}

	c.Count(MissingSync)
	sink := &testSink{free: r.need - 1}
	if res := r.Step(sink); res != StepBlocked {
		t.Errorf("Step = %s, expected blocked", res)
	}
	if c.Pending(MissingSync) != 1 {
		t.Error("blocked report must not drain the counter")
	}
}

// ============================================================
// Paced Sink Tests
// ============================================================

func TestPacedSink_StartsFull(t *testing.T) {
	s := NewPacedSink(&bytes.Buffer{}, 1000, 100)
	if got := s.Free(); got != 100 {
		t.Errorf("Free = %d, expected the full burst", got)
	}
}

func TestPacedSink_RaisesBadArguments(t *testing.T) {
	s := NewPacedSink(&bytes.Buffer{}, 0, -5)
	if s.rate != 1 || s.burst != 1 {
		t.Errorf("rate/burst = %d/%d, expected 1/1", s.rate, s.burst)
	}
}

func TestPacedSink_ConsumeAndRefill(t *testing.T) {
	var buf bytes.Buffer
	s := NewPacedSink(&buf, 1000, 100)
	base := time.Unix(1000, 0)
	s.now = func() time.Time { return base }
	s.last = base

	if _, err := s.Write(make([]byte, 30)); err != nil {
		t.Fatal(err)
	}
	if got := s.Free(); got != 70 {
		t.Errorf("Free after write = %d, expected 70", got)
	}
	if buf.Len() != 30 {
		t.Errorf("underlying writer got %d bytes", buf.Len())
	}

	// 10ms at 1000 B/s credits 10 bytes.
	base = base.Add(10 * time.Millisecond)
	if got := s.Free(); got != 80 {
		t.Errorf("Free after 10ms = %d, expected 80", got)
	}

	// A long pause clamps at the burst depth.
	base = base.Add(time.Hour)
	if got := s.Free(); got != 100 {
		t.Errorf("Free after an hour = %d, expected 100", got)
	}
}

func TestPacedSink_FractionalCreditCarries(t *testing.T) {
	s := NewPacedSink(&bytes.Buffer{}, 1000, 100)
	base := time.Unix(1000, 0)
	s.now = func() time.Time { return base }
	s.last = base
	s.level = 0

	// 1.5ms credits one byte and keeps the half-byte remainder.
	base = base.Add(1500 * time.Microsecond)
	if got := s.Free(); got != 1 {
		t.Errorf("Free after 1.5ms = %d, expected 1", got)
	}
	base = base.Add(500 * time.Microsecond)
	if got := s.Free(); got != 2 {
		t.Errorf("Free after 2ms total = %d, expected 2", got)
	}
}

// ============================================================
// Pump Tests
// ============================================================

func TestPump_DiagnosticFlow(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModeDiagnostic, sel: SelectAll()}, 5, 1000)

	q.push(MustEncodeFrame(AppendByteField(nil, CodeAttention, 42)))
	p.Tick()
	p.Tick()

	if got := string(sink.data); got != "Attention=42\n" {
		t.Errorf("output = %q", got)
	}
	if p.Stats().Frames != 1 {
		t.Errorf("Frames = %d, expected 1", p.Stats().Frames)
	}
	if p.Stats().TotalBytes != 6 {
		t.Errorf("TotalBytes = %d, expected 6", p.Stats().TotalBytes)
	}
	if got := p.Store().Value(ChannelAttention); got != 42 {
		t.Errorf("stored attention = %d, expected 42", got)
	}
}

func TestPump_ReporterOnlyWhenIdle(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModeDiagnostic, sel: SelectAll()}, 5, 1000)

	frame := MustEncodeFrame([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	frame[4] ^= 0xFF // checksum will fail
	q.push(frame)

	p.Tick()
	p.Tick()
	p.Tick()

	want := "#BadChecksum=1\n#DiscardedBytes=9\n"
	if got := string(sink.data); got != want {
		t.Errorf("reports:\n got %q\nwant %q", got, want)
	}
}

func TestPump_ReporterDeferredWhileEmitting(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModeDiagnostic, sel: SelectAll()}, 5, 1000)

	// An anomaly and a value land on the same tick: the value line wins,
	// the report follows on the first idle tick.
	bad := MustEncodeFrame([]byte{0x01, 0x02})
	bad[3] ^= 0x10
	q.push(bad)
	q.push(MustEncodeFrame(AppendByteField(nil, CodeAttention, 7)))

	p.Tick() // Attention token
	p.Tick() // newline
	p.Tick() // idle, first report
	p.Tick() // idle, second report

	want := "Attention=7\n#BadChecksum=1\n#DiscardedBytes=6\n"
	if got := string(sink.data); got != want {
		t.Errorf("output:\n got %q\nwant %q", got, want)
	}
}

func TestPump_PlotModeStaysSilentOnErrors(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModePlot, sel: SelectAll()}, 5, 1000)

	frame := MustEncodeFrame([]byte{0x01, 0x02, 0x03})
	frame[3] ^= 0x20
	q.push(frame)

	for i := 0; i < 5; i++ {
		p.Tick()
	}

	if len(sink.data) != 0 {
		t.Errorf("plot mode emitted %q for a damaged frame", sink.data)
	}
	if got := p.Counters().Pending(BadChecksum); got != 1 {
		t.Errorf("BadChecksum = %d, counters must still accumulate", got)
	}
}

func TestPump_PlotModeEmitsCycle(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModePlot, sel: SelectAll()}, 5, 1000)

	q.push(MustEncodeFrame(AppendBands(nil, 1, 2, 3, 4, 5, 6, 7, 8)))
	for i := 0; i < 8; i++ {
		p.Tick()
	}

	rows := strings.Split(strings.TrimSuffix(string(sink.data), "\n"), "\n")
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d: %q", len(rows), sink.data)
	}
	for _, row := range rows {
		if got := len(strings.Split(row, "\t")); got != PlottedChannels+1 {
			t.Errorf("row has %d columns: %q", got, row)
		}
	}
}

func TestPump_ModeSwitchWaitsForLineEnd(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	controls := &testControls{mode: ModeDiagnostic, sel: SelectAll()}
	p := NewPump(q, sink, controls, 5, 1000)

	q.push(MustEncodeFrame(AppendByteField(nil, CodeAttention, 42)))
	p.Tick() // line is now open

	controls.mode = ModePlot
	p.Tick() // switch deferred, newline lands instead
	if p.Mode() != ModeDiagnostic {
		t.Error("mode must not switch while a line is open")
	}
	if got := string(sink.data); got != "Attention=42\n" {
		t.Errorf("output = %q", got)
	}

	p.Tick()
	if p.Mode() != ModePlot {
		t.Error("mode should switch once the line is closed")
	}
}

func TestPump_SelectionFollowsControls(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	controls := &testControls{mode: ModePlot, sel: SelectAll()}
	p := NewPump(q, sink, controls, 5, 1000)

	controls.sel = 0
	q.push(MustEncodeFrame(AppendBands(nil, 9, 9, 9, 9, 9, 9, 9, 9)))
	for i := 0; i < 6; i++ {
		p.Tick()
	}

	rows := strings.Split(strings.TrimSuffix(string(sink.data), "\n"), "\n")
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %q", sink.data)
	}
	for _, row := range rows {
		if row != strings.Repeat("0\t", PlottedChannels)+"1000" {
			t.Errorf("deselected row = %q", row)
		}
	}
}

func TestPump_TracksDiagnostics(t *testing.T) {
	q := &byteQueue{}
	sink := &testSink{free: 1 << 20}
	p := NewPump(q, sink, &testControls{mode: ModeDiagnostic, sel: SelectAll()}, 5, 1000)

	base := time.Unix(2000, 0)
	p.now = func() time.Time { return base }

	q.push(make([]byte, 10))
	p.Tick()

	base = base.Add(50 * time.Millisecond)
	p.Tick()

	d := p.Diagnostics()
	if d.MaxBuffered != 10 {
		t.Errorf("MaxBuffered = %d, expected 10", d.MaxBuffered)
	}
	if d.MaxTickGap != 50*time.Millisecond {
		t.Errorf("MaxTickGap = %v, expected 50ms", d.MaxTickGap)
	}
}

func TestPump_ChunkInvariance(t *testing.T) {
	stream := append([]byte{0x13, 0x37}, MustEncodeFrame(AppendByteField(nil, CodeAttention, 42))...)
	stream = append(stream, MustEncodeFrame(AppendBands(nil, 1, 2, 3, 4, 5, 6, 7, 8))...)

	run := func(chunks [][]byte) *Pump {
		q := &byteQueue{}
		p := NewPump(q, &testSink{}, &testControls{mode: ModeDiagnostic, sel: SelectAll()}, 5, 1000)
		for _, chunk := range chunks {
			q.push(chunk)
			p.Tick()
		}
		return p
	}

	whole := run([][]byte{stream})
	split := run([][]byte{stream[:1], stream[1:5], stream[5:6], stream[6:]})

	for ch := Channel(0); ch < ChannelCount; ch++ {
		if whole.Store().Value(ch) != split.Store().Value(ch) {
			t.Errorf("%s: whole=%d split=%d", ch.Name(),
				whole.Store().Value(ch), split.Store().Value(ch))
		}
	}
	if whole.Stats().Frames != split.Stats().Frames {
		t.Errorf("frame counts diverge: %d vs %d", whole.Stats().Frames, split.Stats().Frames)
	}
	for _, k := range []ErrorKind{MissingSync, BadPayloadLength, BadChecksum, DiscardedBytes} {
		if whole.Counters().Lifetime(k) != split.Counters().Lifetime(k) {
			t.Errorf("%s diverges: %d vs %d", k,
				whole.Counters().Lifetime(k), split.Counters().Lifetime(k))
		}
	}
}
