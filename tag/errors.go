// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tag

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTag reports a tag byte outside the value grammar.
	ErrUnknownTag = errors.New("tag: unknown value tag")

	// ErrTagStreamExhausted reports that a Stream ran out of grammar bytes
	// mid-traversal (a malformed or truncated return-tag description).
	ErrTagStreamExhausted = errors.New("tag: tag stream exhausted")
)

// ReturnValueError reports that a host service's return value does not
// match its declared return-tag stream. It carries the offending function
// identity, the value, and the expected shape, so the caller (and the
// exception bridge, which marshals it back to the device as a regular RPC
// exception) can produce a useful message.
type ReturnValueError struct {
	Function string
	Value    any
	Expected string
}

func (e *ReturnValueError) Error() string {
	return fmt.Sprintf("type mismatch: cannot serialize %#v as %s (%s returned it)",
		e.Value, e.Expected, e.Function)
}
