// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coreexc

import (
	"strconv"

	"github.com/coredev/corecomm/wire"
)

// EmbeddingMap is the subset of the embedding map contract this package
// needs, declared locally for the same reason package tag declares its own
// copy: callers may supply any registry satisfying it.
type EmbeddingMap interface {
	StoreObject(obj any) (int32, error)
	RetrieveObject(id int32) (any, error)
}

// ExceptionFactory lets a registered embedded exception type control how its
// Go error value is constructed from a decoded CoreException, instead of
// always falling back to the generic KernelException wrapper.
type ExceptionFactory interface {
	NewFromCore(core *CoreException) error
}

// DecodeDeviceException reads a KERNEL_EXCEPTION body (already positioned
// by the caller having matched the message type) and returns the
// corresponding Go error to raise on the host.
func DecodeDeviceException(r *wire.Reader, em EmbeddingMap, sym Symbolizer, dem Demangler) (error, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	message, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	var params [3]int64
	for i := range params {
		params[i], err = r.ReadInt64()
		if err != nil {
			return nil, err
		}
	}

	filename, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	line, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	column, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	function, err := r.ReadString()
	if err != nil {
		return nil, err
	}

	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	addrs := make([]int32, n)
	for i := range addrs {
		addrs[i], err = r.ReadInt32()
		if err != nil {
			return nil, err
		}
	}

	symbolized, err := sym.Symbolize(addrs)
	if err != nil {
		return nil, err
	}
	demangled, err := dem.Demangle([]string{function})
	if err != nil {
		return nil, err
	}
	directFunction := function
	if len(demangled) > 0 {
		directFunction = demangled[0]
	}

	traceback := make([]Frame, 0, len(symbolized)+1)
	for i := len(symbolized) - 1; i >= 0; i-- {
		traceback = append(traceback, symbolized[i])
	}
	traceback = append(traceback, Frame{File: filename, Line: line, Column: column, Function: directFunction})

	core := &CoreException{Name: name, Message: formatMessage(message, params), Params: params, Traceback: traceback}

	id, rest, perr := ParseName(name)
	if perr != nil {
		return nil, perr
	}
	if id == 0 {
		return builtinErrorFor(rest, core), nil
	}
	obj, rerr := em.RetrieveObject(id)
	if rerr != nil {
		return nil, rerr
	}
	if factory, ok := obj.(ExceptionFactory); ok {
		return factory.NewFromCore(core), nil
	}
	return &KernelException{Core: core}, nil
}

// builtinErrorFor wraps a decoded exception whose id was 0 (a builtin kind)
// into a Go error. Kinds other than the three well-known ones
// (ZeroDivisionError, ValueError, IndexError) still round-trip fine — the
// host simply received a builtin kind it has no constructor for and may
// only inspect or re-raise.
func builtinErrorFor(kind string, core *CoreException) error {
	return &coreBackedBuiltin{BuiltinException: BuiltinException{Kind: kind, Message: core.Message}, core: core}
}

// coreBackedBuiltin is a BuiltinException decoded from the wire: it also
// implements CoreCarrier so re-raising it (e.g. a service that simply
// propagates a caught kernel exception) round-trips the original record
// verbatim rather than being reclassified.
type coreBackedBuiltin struct {
	BuiltinException
	core *CoreException
}

func (e *coreBackedBuiltin) CoreException() *CoreException { return e.core }

// formatMessage performs the positional substitution the device's message
// formatting applies via its own str.format(*params)-equivalent: the wire
// only guarantees a "formatted message with positional params" contract,
// so this driver supports the common case the kernel runtime actually
// emits, "{}" placeholders consumed in order.
func formatMessage(message string, params [3]int64) string {
	out := make([]byte, 0, len(message))
	argIdx := 0
	for i := 0; i < len(message); i++ {
		if message[i] == '{' && i+1 < len(message) && message[i+1] == '}' && argIdx < len(params) {
			out = strconv.AppendInt(out, params[argIdx], 10)
			argIdx++
			i++
			continue
		}
		out = append(out, message[i])
	}
	return string(out)
}
