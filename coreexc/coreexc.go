// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package coreexc implements the exception bridge: marshaling of
// device→host and host→device exceptions, including backtrace
// symbolization/demangling cooperation and the builtin-vs-embedded type
// name prefix rule for the wire's exception name encoding.
package coreexc

import (
	"fmt"
	"strconv"
)

// Frame is one entry of a core exception's traceback.
type Frame struct {
	File     string
	Line     int32
	Column   int32
	Function string
}

// CoreException is the structured exception record carried on the wire
// between a running kernel and the host.
type CoreException struct {
	Name      string // "0:KIND" for a builtin, "<id>:module.qualname" for embedded
	Message   string
	Params    [3]int64
	Traceback []Frame
}

// Symbolizer resolves return addresses to source locations. It is an
// external collaborator; the core only calls it.
type Symbolizer interface {
	Symbolize(addresses []int32) ([]Frame, error)
}

// Demangler rewrites mangled function names into their source form,
// positionally. It is an external collaborator.
type Demangler interface {
	Demangle(functions []string) ([]string, error)
}

// ParseName splits a core exception name of the form "0:KIND" or
// "<id>:module.qualname" into its id and the remainder of the name. A
// malformed name (no ':' separator, or a non-integer id) fails.
func ParseName(name string) (id int32, rest string, err error) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			n, perr := strconv.ParseInt(name[:i], 10, 32)
			if perr != nil {
				return 0, "", fmt.Errorf("coreexc: malformed exception name %q: %w", name, perr)
			}
			return int32(n), name[i+1:], nil
		}
	}
	return 0, "", fmt.Errorf("coreexc: malformed exception name %q: missing ':'", name)
}

// FormatName builds the "0:KIND" or "<id>:module.qualname" name string.
func FormatName(id int32, qualified string) string {
	return fmt.Sprintf("%d:%s", id, qualified)
}
