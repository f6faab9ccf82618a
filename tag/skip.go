// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tag

// Skip performs a tag-only traversal of tags, advancing its cursor past one
// value's grammar without emitting any bytes. 't', 'l', and 'r' descend;
// every other tag has no sub-tags. This is what lets Send's list case
// advance the parent grammar exactly once after walking the sub-grammar
// once per element from saved copies.
func Skip(tags *Stream) error {
	rawTag, err := tags.PopTag()
	if err != nil {
		return err
	}
	switch Kind(rawTag) {
	case KindTuple:
		arity, err := tags.PopTag()
		if err != nil {
			return err
		}
		for i := uint8(0); i < arity; i++ {
			if err := Skip(tags); err != nil {
				return err
			}
		}
		return nil
	case KindList:
		return Skip(tags)
	case KindRange:
		return Skip(tags)
	default:
		return nil
	}
}
