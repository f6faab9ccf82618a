// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package envelope

import (
	"encoding/binary"
)

// Reader holds the inbound parser state: the type of the message currently
// being consumed and the number of undrained body bytes remaining.
type Reader struct {
	ch Channel

	current   D2HMsgType
	remaining int64
}

// NewReader returns a Reader consuming envelopes from ch.
func NewReader(ch Channel) *Reader {
	return &Reader{ch: ch, current: noD2HType}
}

// CurrentType returns the message type of the most recently parsed header,
// or the zero value if ReadHeader has not succeeded yet. Draining the body
// does not reset it.
func (r *Reader) CurrentType() D2HMsgType { return r.current }

// Remaining returns the number of undrained body bytes for the in-progress
// message.
func (r *Reader) Remaining() int64 { return r.remaining }

// ReadHeader consumes one envelope header: it resynchronizes on the 0x5A
// sync sequence, reads the length and type, and sets Remaining to the body
// size. The channel is opened if not already.
//
// Invariant: the previous message must have been fully drained (Remaining
// == 0) before calling ReadHeader again, or it fails with ErrReadUnderrun.
func (r *Reader) ReadHeader() error {
	if err := r.ch.Open(); err != nil {
		return err
	}
	if r.remaining > 0 {
		return ErrReadUnderrun
	}

	if err := r.resync(); err != nil {
		return err
	}

	var lenBuf [4]byte
	if _, err := r.ch.Read(lenBuf[:]); err != nil {
		return err
	}
	length := int64(binary.BigEndian.Uint32(lenBuf[:]))
	if length == 0 {
		return ErrConnectionClosed
	}

	var typeBuf [1]byte
	if _, err := r.ch.Read(typeBuf[:]); err != nil {
		return err
	}
	if !knownD2H(typeBuf[0]) {
		return ErrUnknownMessageType
	}

	if length < HeaderLen {
		return ErrMalformedHeader
	}

	r.current = D2HMsgType(typeBuf[0])
	r.remaining = length - HeaderLen
	return nil
}

// resync consumes bytes from the channel until four consecutive sync bytes
// have been observed, restarting the count on any mismatch. Resynchronization
// is deliberately asymmetric: the reader tolerates garbage before the sync
// bytes; the writer (see Writer) never emits any.
func (r *Reader) resync() error {
	var b [1]byte
	count := 0
	for count < 4 {
		if _, err := r.ch.Read(b[:]); err != nil {
			return err
		}
		if b[0] == SyncByte {
			count++
		} else {
			count = 0
		}
	}
	return nil
}

// ReadChunk reads exactly n bytes from the current message body, failing
// with ErrReadOverrun if n exceeds Remaining.
func (r *Reader) ReadChunk(n int) ([]byte, error) {
	if int64(n) > r.remaining {
		return nil, ErrReadOverrun
	}
	r.remaining -= int64(n)
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := r.ch.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadChunkInto reads exactly len(p) bytes from the current message body
// into p, the zero-allocation counterpart of ReadChunk for callers that
// already own a buffer (e.g. fixed-size primitive reads).
func (r *Reader) ReadChunkInto(p []byte) error {
	if int64(len(p)) > r.remaining {
		return ErrReadOverrun
	}
	r.remaining -= int64(len(p))
	if len(p) == 0 {
		return nil
	}
	_, err := r.ch.Read(p)
	return err
}

// Drain reads and discards any undrained body bytes, leaving Remaining at
// zero so the next ReadHeader call succeeds.
func (r *Reader) Drain() error {
	if r.remaining == 0 {
		return nil
	}
	_, err := r.ReadChunk(int(r.remaining))
	return err
}

// Expect reports whether the in-progress message has the awaited type.
// Callers that treat a mismatch as fatal (package control) wrap this in
// their own unexpected-reply error.
func (r *Reader) Expect(want D2HMsgType) bool {
	return r.current == want
}
