// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tag implements the tagged value codec: the RPC value grammar
// described by the wire protocol's tag table, its two-pass list/range
// serialization, and the keyword-argument collation used by the RPC server
// loop.
//
// Dynamic typing of RPC values is modeled as a tagged sum: Value's variants
// correspond one-to-one to the tag alphabet.
package tag

// Kind identifies which alternative of Value is populated.
type Kind byte

const (
	KindEnd     Kind = 0 // the '\0' end-of-args sentinel; only valid at arg-list top level
	KindNone    Kind = 'n'
	KindBool    Kind = 'b'
	KindInt32   Kind = 'i'
	KindInt64   Kind = 'I'
	KindFloat   Kind = 'f'
	KindFrac    Kind = 'F'
	KindString  Kind = 's'
	KindList    Kind = 'l'
	KindTuple   Kind = 't'
	KindRange   Kind = 'r'
	KindKeyword Kind = 'k'
	KindObject  Kind = 'O'
)

// Fraction mirrors Python's Fraction as transmitted on the wire: a raw
// numerator/denominator pair, not reduced to lowest terms by this package.
type Fraction struct {
	Num, Den int64
}

// Range is the three same-typed sub-values of an 'r' tag.
type Range struct {
	Start, Stop, Step Value
}

// Keyword is a single 'k'-tagged value: a name and the value that follows
// it in the stream.
type Keyword struct {
	Name  string
	Value Value
}

// Value is a tagged sum over every RPC value variant. Only the field(s)
// matching Kind are meaningful.
type Value struct {
	Kind Kind

	Bool    bool
	Int32   int32
	Int64   int64
	Float64 float64
	Frac    Fraction
	Str     string
	List    []Value // populated for both KindList and KindTuple
	Rng     *Range
	Keyword *Keyword
	Object  any // resolved via EmbeddingMap.RetrieveObject (receive side) or the pre-registered int32 object id (send side)
}

// None, BoolVal, Int32Val etc. are small constructors used by service
// implementations to build return values without spelling out the struct
// literal each time.

func None() Value { return Value{Kind: KindNone} }

func BoolVal(v bool) Value { return Value{Kind: KindBool, Bool: v} }

func Int32Val(v int32) Value { return Value{Kind: KindInt32, Int32: v} }

func Int64Val(v int64) Value { return Value{Kind: KindInt64, Int64: v} }

func FloatVal(v float64) Value { return Value{Kind: KindFloat, Float64: v} }

func FracVal(num, den int64) Value { return Value{Kind: KindFrac, Frac: Fraction{Num: num, Den: den}} }

func StringVal(v string) Value { return Value{Kind: KindString, Str: v} }

func ListVal(elems []Value) Value { return Value{Kind: KindList, List: elems} }

func TupleVal(elems []Value) Value { return Value{Kind: KindTuple, List: elems} }

func RangeVal(start, stop, step Value) Value {
	return Value{Kind: KindRange, Rng: &Range{Start: start, Stop: stop, Step: step}}
}

func ObjectVal(obj any) Value { return Value{Kind: KindObject, Object: obj} }
