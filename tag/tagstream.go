// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tag

// Stream is a tag grammar: a byte sequence describing the shape of an RPC
// return value, consumed in lock-step with the data being serialized. It is
// a cursor over a byte slice, not a consumed iterator: cheap copying of the
// tag stream suffix is what the two-pass list/range serialization needs.
type Stream struct {
	b   []byte
	pos int
}

// NewStream wraps raw tag bytes (e.g. the return-tag bytes read off the
// wire) as a Stream starting at position zero.
func NewStream(raw []byte) *Stream { return &Stream{b: raw} }

// Done reports whether every byte of the grammar has been consumed.
func (s *Stream) Done() bool { return s.pos >= len(s.b) }

// PopTag consumes and returns one grammar byte (a tag, or the arity byte
// following a 't' tag).
func (s *Stream) PopTag() (byte, error) {
	if s.pos >= len(s.b) {
		return 0, ErrTagStreamExhausted
	}
	t := s.b[s.pos]
	s.pos++
	return t, nil
}

// Copy returns a new Stream over the same underlying bytes, positioned
// identically to s. Mutating the copy (advancing its cursor) never affects
// s; this is what lets the sender restart from the same sub-grammar for
// each list element or range component before finally skipping it once in
// the parent stream.
func (s *Stream) Copy() *Stream {
	return &Stream{b: s.b, pos: s.pos}
}

// Sync advances s's cursor to match other's. Used after a two-pass
// serialization to move the parent stream past a sub-grammar that was
// walked from a saved copy.
func (s *Stream) Sync(other *Stream) { s.pos = other.pos }

// Remaining returns the unconsumed suffix of the grammar, for diagnostics.
func (s *Stream) Remaining() []byte { return s.b[s.pos:] }
