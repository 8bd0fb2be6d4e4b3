// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

package thinkgear

import "strconv"

// Reporter drains pending anomaly counters, one counter per step, in
// round-robin order. Each report is a single atomic line of the form
// "#Name=count\n"; the leading '#' keeps reports distinguishable from
// value tokens in the diagnostic stream. A report is only written when
// the sink has room for the worst-case report line, and the drained
// counter is zeroed afterwards.
type Reporter struct {
	counters *Counters
	cursor   ErrorKind
	need     int
	buf      []byte
}

// NewReporter creates a reporter draining c.
func NewReporter(c *Counters) *Reporter {
	longest := 0
	for k := ErrorKind(0); k < errorKindCount; k++ {
		if n := len(k.String()); n > longest {
			longest = n
		}
	}
	// '#' + name + '=' + ten digits of a saturated uint32 + '\n'
	return &Reporter{counters: c, need: longest + 13}
}

// Step reports and zeroes the next nonzero pending counter, if any.
func (r *Reporter) Step(sink Sink) StepResult {
	for i := 0; i < int(errorKindCount); i++ {
		k := (r.cursor + ErrorKind(i)) % errorKindCount
		v := r.counters.Pending(k)
		if v == 0 {
			continue
		}
		if sink.Free() < r.need {
			return StepBlocked
		}
		r.buf = r.buf[:0]
		r.buf = append(r.buf, '#')
		r.buf = append(r.buf, k.String()...)
		r.buf = append(r.buf, '=')
		r.buf = strconv.AppendUint(r.buf, uint64(v), 10)
		r.buf = append(r.buf, '\n')
		if _, err := sink.Write(r.buf); err != nil {
			return StepBlocked
		}
		r.counters.Zero(k)
		r.cursor = (k + 1) % errorKindCount
		return StepProgressed
	}
	return StepIdle
}
