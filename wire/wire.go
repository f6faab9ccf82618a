// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the primitive codec: fixed-width big-endian
// integers and doubles, length-prefixed byte strings, and NUL-terminated
// UTF-8 strings, layered on top of package envelope.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/coredev/corecomm/envelope"
)

// ErrStringContainsNUL reports an attempt to write a string containing an
// embedded NUL byte, which the wire NUL-termination convention cannot
// represent.
var ErrStringContainsNUL = errors.New("wire: string contains NUL byte")

// Reader decodes primitives from the body of the message currently parsed
// by the underlying envelope.Reader.
type Reader struct {
	*envelope.Reader
}

// NewReader wraps an envelope.Reader with primitive decoding.
func NewReader(r *envelope.Reader) *Reader { return &Reader{Reader: r} }

// ReadInt8 reads one unsigned byte.
func (r *Reader) ReadInt8() (uint8, error) {
	var b [1]byte
	if err := r.ReadChunkInto(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	var b [4]byte
	if err := r.ReadChunkInto(b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// ReadInt64 reads a big-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	var b [8]byte
	if err := r.ReadChunkInto(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// ReadFloat64 reads a big-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	var b [8]byte
	if err := r.ReadChunkInto(b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

// ReadBytes reads a length-prefixed raw byte blob.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, envelope.ErrReadOverrun
	}
	return r.ReadChunk(int(n))
}

// ReadString reads a length-prefixed byte string, strips exactly one
// trailing NUL byte, and decodes it as UTF-8. Invalid UTF-8 is replaced
// lossily, matching the device log reply's decoding convention; the
// identity and key/value reads are expected to carry well-formed UTF-8
// and ReadString never errors on decode, only on framing.
func (r *Reader) ReadString() (string, error) {
	raw, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if len(raw) > 0 && raw[len(raw)-1] == 0 {
		raw = raw[:len(raw)-1]
	}
	return toValidUTF8Lossy(raw), nil
}

func toValidUTF8Lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// LossyUTF8 decodes raw as UTF-8, replacing invalid sequences the same way
// ReadString does. Exposed for control operations (get_log) whose reply body
// is not NUL-terminated and so cannot go through ReadString directly.
func LossyUTF8(raw []byte) string { return toValidUTF8Lossy(raw) }

// Writer encodes primitives into the body of the message currently built by
// the underlying envelope.Writer.
type Writer struct {
	*envelope.Writer
}

// NewWriter wraps an envelope.Writer with primitive encoding.
func NewWriter(w *envelope.Writer) *Writer { return &Writer{Writer: w} }

// WriteInt8 appends one unsigned byte.
func (w *Writer) WriteInt8(v uint8) { w.WriteChunk([]byte{v}) }

// WriteInt32 appends a big-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.WriteChunk(b[:])
}

// WriteInt64 appends a big-endian signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.WriteChunk(b[:])
}

// WriteFloat64 appends a big-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.WriteChunk(b[:])
}

// WriteBytes appends a length-prefixed raw byte blob.
func (w *Writer) WriteBytes(v []byte) {
	w.WriteInt32(int32(len(v)))
	w.WriteChunk(v)
}

// WriteString appends a NUL-terminated UTF-8 string, length-prefixed.
func (w *Writer) WriteString(v string) error {
	if strings.IndexByte(v, 0) >= 0 {
		return ErrStringContainsNUL
	}
	w.WriteBytes(append([]byte(v), 0))
	return nil
}
