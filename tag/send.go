// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tag

import (
	"fmt"
	"math"

	"github.com/coredev/corecomm/wire"
)

// Int32 domain bounds reproduce the device's open interval rather than the
// full int32 range: the low and high sentinel values (−2^31, 2^31−1) are
// rejected. It is unclear whether this is deliberate (reserved sentinels) or
// an off-by-one; this driver replicates it exactly so wire behavior matches
// what a real device has always seen from this driver's ancestor, and
// documents the choice in DESIGN.md rather than silently widening it.
const (
	minInt32Allowed = math.MinInt32 + 1
	maxInt32Allowed = math.MaxInt32 - 1
	minInt64Allowed = math.MinInt64 + 1
	maxInt64Allowed = math.MaxInt64 - 1
)

// Send serializes value against the grammar remaining in tags, advancing
// tags past whatever it consumed. root and function identify the top-level
// return value and the service name, for ReturnValueError messages.
func Send(w *wire.Writer, tags *Stream, value Value, root Value, function string) error {
	rawTag, err := tags.PopTag()
	if err != nil {
		return err
	}

	mismatch := func(expected string) error {
		return &ReturnValueError{Function: function, Value: describe(value), Expected: expected}
	}

	switch Kind(rawTag) {
	case KindTuple:
		arity, err := tags.PopTag()
		if err != nil {
			return err
		}
		if value.Kind != KindTuple || len(value.List) != int(arity) {
			return mismatch(fmt.Sprintf("tuple of %d", arity))
		}
		for _, elt := range value.List {
			if err := Send(w, tags, elt, root, function); err != nil {
				return err
			}
		}
		return nil

	case KindNone:
		if value.Kind != KindNone {
			return mismatch("none")
		}
		return nil

	case KindBool:
		if value.Kind != KindBool {
			return mismatch("bool")
		}
		w.WriteInt8(boolByte(value.Bool))
		return nil

	case KindInt32:
		if value.Kind != KindInt32 || value.Int32 < minInt32Allowed || value.Int32 > maxInt32Allowed {
			return mismatch("32-bit int")
		}
		w.WriteInt32(value.Int32)
		return nil

	case KindInt64:
		if value.Kind != KindInt64 || value.Int64 < minInt64Allowed || value.Int64 > maxInt64Allowed {
			return mismatch("64-bit int")
		}
		w.WriteInt64(value.Int64)
		return nil

	case KindFloat:
		if value.Kind != KindFloat {
			return mismatch("float")
		}
		w.WriteFloat64(value.Float64)
		return nil

	case KindFrac:
		if value.Kind != KindFrac ||
			value.Frac.Num < minInt64Allowed || value.Frac.Num > maxInt64Allowed ||
			value.Frac.Den < minInt64Allowed || value.Frac.Den > maxInt64Allowed {
			return mismatch("64-bit fraction")
		}
		w.WriteInt64(value.Frac.Num)
		w.WriteInt64(value.Frac.Den)
		return nil

	case KindString:
		if value.Kind != KindString {
			return mismatch("str")
		}
		if err := w.WriteString(value.Str); err != nil {
			return mismatch("str")
		}
		return nil

	case KindList:
		if value.Kind != KindList {
			return mismatch("list")
		}
		w.WriteInt32(int32(len(value.List)))
		for _, elt := range value.List {
			elemTags := tags.Copy()
			if err := Send(w, elemTags, elt, root, function); err != nil {
				return err
			}
		}
		// Every element walked the sub-grammar from a saved copy; advance the
		// parent stream past it exactly once via a tag-only skip pass.
		return Skip(tags)

	case KindRange:
		if value.Kind != KindRange {
			return mismatch("range")
		}
		startTags := tags.Copy()
		if err := Send(w, startTags, value.Rng.Start, root, function); err != nil {
			return err
		}
		stopTags := tags.Copy()
		if err := Send(w, stopTags, value.Rng.Stop, root, function); err != nil {
			return err
		}
		stepTags := tags.Copy()
		if err := Send(w, stepTags, value.Rng.Step, root, function); err != nil {
			return err
		}
		// All three share one sub-grammar; advance the parent past it once,
		// using whichever saved copy progressed (they all progress identically
		// since start/stop/step share a sub-tag).
		tags.Sync(stepTags)
		return nil

	case KindObject:
		if value.Kind != KindObject {
			return mismatch("object")
		}
		// Storing through the embedding map is explicitly not part of this
		// codec's contract: the object is expected pre-registered and
		// Value.Object must already carry its id as an int32 when it reaches
		// Send. Package rpcserver passes a service's return value through
		// unchanged, so the service itself supplies the id.
		id, ok := value.Object.(int32)
		if !ok {
			return mismatch("pre-registered object id")
		}
		w.WriteInt32(id)
		return nil

	default:
		return ErrUnknownTag
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func describe(v Value) string {
	return fmt.Sprintf("%+v", v)
}
