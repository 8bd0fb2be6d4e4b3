// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Neurotap Labs

// Package session reads and writes telemetry capture files. A capture is
// a CBOR stream: one Header item followed by any number of Reading
// items. Integer map keys keep the on-disk form compact enough for long
// recording sessions.
package session

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/neurotap/mindstat/pkg/thinkgear"
)

// Version is the current capture file version.
const Version = 1

// Header opens every capture file.
type Header struct {
	Version   int    `cbor:"1,keyasint"`
	UnixMicro int64  `cbor:"2,keyasint"`
	Source    string `cbor:"3,keyasint,omitempty"`
}

// CreatedAt returns the capture start time.
func (h Header) CreatedAt() time.Time { return time.UnixMicro(h.UnixMicro) }

// Reading is one timestamped snapshot of every channel value.
type Reading struct {
	UnixMicro int64                          `cbor:"1,keyasint"`
	Values    [thinkgear.ChannelCount]uint32 `cbor:"2,keyasint"`
}

// Snapshot captures the store's current values.
func Snapshot(at time.Time, store *thinkgear.ValueStore) Reading {
	r := Reading{UnixMicro: at.UnixMicro()}
	for ch := thinkgear.Channel(0); ch < thinkgear.ChannelCount; ch++ {
		r.Values[ch] = store.Value(ch)
	}
	return r
}

// At returns the snapshot time.
func (r Reading) At() time.Time { return time.UnixMicro(r.UnixMicro) }

// Value returns the snapshot value of one channel.
func (r Reading) Value(ch thinkgear.Channel) uint32 {
	if ch < 0 || ch >= thinkgear.ChannelCount {
		return 0
	}
	return r.Values[ch]
}

// Writer appends readings to a capture stream.
type Writer struct {
	enc   *cbor.Encoder
	count int
}

// NewWriter writes a capture header to w and returns a writer for the
// readings that follow. source describes where the telemetry came from.
func NewWriter(w io.Writer, source string) (*Writer, error) {
	enc := cbor.NewEncoder(w)
	header := Header{
		Version:   Version,
		UnixMicro: time.Now().UnixMicro(),
		Source:    source,
	}
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &Writer{enc: enc}, nil
}

// Append writes one reading.
func (w *Writer) Append(r Reading) error {
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("write reading: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of readings written so far.
func (w *Writer) Count() int { return w.count }

// Reader replays a capture stream.
type Reader struct {
	dec    *cbor.Decoder
	header Header
}

// NewReader consumes the capture header from r and validates its
// version.
func NewReader(r io.Reader) (*Reader, error) {
	dec := cbor.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("unsupported capture version %d (want %d)", h.Version, Version)
	}
	return &Reader{dec: dec, header: h}, nil
}

// Header returns the capture header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next reading. It returns io.EOF at a clean end of
// stream.
func (r *Reader) Next() (Reading, error) {
	var rec Reading
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Reading{}, io.EOF
		}
		return Reading{}, fmt.Errorf("read reading: %w", err)
	}
	return rec, nil
}

// ReadAll drains the remaining readings.
func (r *Reader) ReadAll() ([]Reading, error) {
	var all []Reading
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return all, err
		}
		all = append(all, rec)
	}
}
