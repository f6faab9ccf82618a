// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package envelope

import "encoding/binary"

// Writer holds the outbound builder state: a pending message type and an
// ordered sequence of appended byte chunks. Flushing computes the total
// length, writes the envelope header, then every chunk in order, then
// clears the builder.
type Writer struct {
	ch Channel

	pendingType H2DMsgType
	chunks      [][]byte
	begun       bool
}

// NewWriter returns a Writer emitting envelopes to ch.
func NewWriter(ch Channel) *Writer {
	return &Writer{ch: ch}
}

// Begin starts building a new outbound message of the given type, discarding
// any previously buffered (unflushed) chunks.
func (w *Writer) Begin(ty H2DMsgType) error {
	if err := w.ch.Open(); err != nil {
		return err
	}
	w.pendingType = ty
	w.chunks = w.chunks[:0]
	w.begun = true
	return nil
}

// WriteChunk appends a byte block to the pending message, to be emitted in
// order when Flush is called.
func (w *Writer) WriteChunk(p []byte) {
	// Copy so the caller can reuse its buffer after this call.
	cp := make([]byte, len(p))
	copy(cp, p)
	w.chunks = append(w.chunks, cp)
}

// Flush computes length = HeaderLen + sum(len(chunk)), writes the sync
// bytes, length, type, and then every chunk in order, and clears the
// builder.
func (w *Writer) Flush() error {
	if !w.begun {
		return ErrInvalidArgument
	}
	var total int64
	for _, c := range w.chunks {
		total += int64(len(c))
	}

	var hdr [HeaderLen]byte
	hdr[0], hdr[1], hdr[2], hdr[3] = SyncByte, SyncByte, SyncByte, SyncByte
	binary.BigEndian.PutUint32(hdr[4:8], uint32(HeaderLen+total))
	hdr[8] = byte(w.pendingType)

	if _, err := w.ch.Write(hdr[:]); err != nil {
		return err
	}
	for _, c := range w.chunks {
		if len(c) == 0 {
			continue
		}
		if _, err := w.ch.Write(c); err != nil {
			return err
		}
	}

	w.chunks = w.chunks[:0]
	w.begun = false
	return nil
}

// WriteEmpty writes a complete message of type ty with an empty body: the
// single-call shorthand for Begin(ty) followed immediately by Flush.
func (w *Writer) WriteEmpty(ty H2DMsgType) error {
	if err := w.Begin(ty); err != nil {
		return err
	}
	return w.Flush()
}

// ResetSession writes the zero-length sync envelope (no type byte). The
// device interprets this as "discard any in-progress state and
// resynchronize". It is not a message and has no reply; it may be written
// at any time before opening a new session (see package session).
func (w *Writer) ResetSession() error {
	if err := w.ch.Open(); err != nil {
		return err
	}
	var hdr [8]byte
	hdr[0], hdr[1], hdr[2], hdr[3] = SyncByte, SyncByte, SyncByte, SyncByte
	binary.BigEndian.PutUint32(hdr[4:8], 0)
	_, err := w.ch.Write(hdr[:])
	return err
}
