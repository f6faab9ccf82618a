// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coreexc

import (
	"reflect"

	"github.com/coredev/corecomm/wire"
)

// EncodeHostException marshals a host-raised error into the wire form a
// kernel expects back from a failed RPC. outer is the frame at the RPC
// dispatch call site; it is used unless err also implements FrameProvider,
// in which case the provider's frame — one level deeper, inside the service
// implementation — is preferred, matching the device's habit of keeping the
// innermost of the (at most two) frames it bothers to serialize.
func EncodeHostException(w *wire.Writer, em EmbeddingMap, err error, outer Frame) error {
	if carrier, ok := err.(CoreCarrier); ok {
		return encodeCore(w, carrier.CoreException())
	}

	name, message := classify(em, err)

	// Host-raised exceptions never carry a real column: neither outer (the
	// RPC dispatch call site) nor HostFrame (which doesn't even return one)
	// has column information, so both are pinned to the wire's "unknown"
	// sentinel regardless of what the caller happened to leave in
	// outer.Column.
	outer.Column = -1
	frames := []Frame{outer}
	if fp, ok := err.(FrameProvider); ok {
		file, line, function := fp.HostFrame()
		frames = []Frame{outer, {File: file, Line: int32(line), Column: -1, Function: function}}
	}
	inner := frames[len(frames)-1]

	if werr := w.WriteString(name); werr != nil {
		return werr
	}
	if werr := w.WriteString(message); werr != nil {
		return werr
	}
	// Host-raised exceptions carry no positional params; the message is
	// already fully formatted.
	for i := 0; i < 3; i++ {
		w.WriteInt64(0)
	}
	if werr := w.WriteString(inner.File); werr != nil {
		return werr
	}
	w.WriteInt32(inner.Line)
	w.WriteInt32(inner.Column)
	return w.WriteString(inner.Function)
}

func encodeCore(w *wire.Writer, core *CoreException) error {
	if werr := w.WriteString(core.Name); werr != nil {
		return werr
	}
	if werr := w.WriteString(core.Message); werr != nil {
		return werr
	}
	for _, p := range core.Params {
		w.WriteInt64(p)
	}
	var frame Frame
	if len(core.Traceback) > 0 {
		frame = core.Traceback[len(core.Traceback)-1]
	}
	if werr := w.WriteString(frame.File); werr != nil {
		return werr
	}
	w.WriteInt32(frame.Line)
	w.WriteInt32(frame.Column)
	return w.WriteString(frame.Function)
}

// classify resolves the wire name and formatted message for a freshly raised
// (not re-raised) host error: builtin kinds get the "0:KIND" prefix;
// anything else is registered into the embedding map and given an
// "<id>:module.qualname" name built from its Go type.
func classify(em EmbeddingMap, err error) (name, message string) {
	message = err.Error()

	if b, ok := err.(*BuiltinException); ok {
		return FormatName(0, b.Kind), message
	}
	if b, ok := err.(Builtin); ok {
		return FormatName(0, b.BuiltinName()), message
	}

	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	qualname := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		qualname = pkg + "." + qualname
	}

	id, regErr := em.StoreObject(err)
	if regErr != nil {
		// Registration only fails for incomparable types, which a concrete
		// error value never is (it is always pointer- or string-backed);
		// fall back to the builtin-less id 0 rather than losing the
		// exception entirely.
		return FormatName(0, qualname), message
	}
	return FormatName(id, qualname), message
}
