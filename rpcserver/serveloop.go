// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rpcserver implements the RPC server loop: the while-kernel-running
// dispatch of inbound RPC_REQUEST, KERNEL_EXCEPTION,
// KERNEL_FINISHED, WATCHDOG_EXPIRED, and CLOCK_FAILURE messages, re-entering
// package tag to decode arguments and encode return values, and package
// coreexc to bridge exceptions across the link.
package rpcserver

import (
	"strconv"
	"time"

	"github.com/coredev/corecomm/control"
	"github.com/coredev/corecomm/coreexc"
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/internal/metrics"
	"github.com/coredev/corecomm/tag"
	"github.com/coredev/corecomm/wire"
)

// EmbeddingMap is the subset of the embedding map contract this package
// needs. RetrieveObject must return a value implementing Service for any
// nonzero service id the device addresses.
type EmbeddingMap interface {
	StoreObject(obj any) (int32, error)
	RetrieveObject(id int32) (any, error)
}

// Hooks are optional diagnostic callbacks. OnLocalError is invoked for
// errors that must be reported locally to the calling environment in
// addition to being marshalled to the device as a regular RPC exception —
// currently only *tag.ReturnValueError. The loop continues regardless of
// whether a hook is set.
type Hooks struct {
	OnLocalError func(err error)
}

func (h *Hooks) reportLocal(err error) {
	if h != nil && h.OnLocalError != nil {
		h.OnLocalError(err)
	}
}

// ServeLoop runs the RPC server loop until the kernel finishes normally (nil
// return), a device-raised kernel exception is decoded (returned as the host
// error built by coreexc), or a terminal fault/protocol error occurs.
//
// r and w must share the Channel that Run (package control) just put into
// the serve-loop regime. m may be nil (see metrics.NullMetrics).
func ServeLoop(r *wire.Reader, w *wire.Writer, em EmbeddingMap, sym coreexc.Symbolizer, dem coreexc.Demangler, hooks *Hooks, m *metrics.Metrics) error {
	for {
		if err := r.ReadHeader(); err != nil {
			return err
		}

		switch r.CurrentType() {
		case envelope.RPCRequest:
			if err := handleRPCRequest(r, w, em, hooks, m); err != nil {
				return err
			}

		case envelope.KernelException:
			hostErr, err := coreexc.DecodeDeviceException(r, em, sym, dem)
			if err != nil {
				return err
			}
			return hostErr

		case envelope.KernelFinished:
			return r.Drain()

		case envelope.KernelStartupFailed:
			if err := r.Drain(); err != nil {
				return err
			}
			return control.ErrKernelStartupFailed

		case envelope.WatchdogExpired:
			if err := r.Drain(); err != nil {
				return err
			}
			return ErrWatchdogExpired

		case envelope.ClockFailure:
			if err := r.Drain(); err != nil {
				return err
			}
			return ErrClockFailure

		default:
			return ErrProtocolError
		}
	}
}

// handleRPCRequest reads one RPC_REQUEST body, dispatches to the setattr
// builtin or a registered Service, and writes the matching reply or
// exception. It never returns an error for a service-level failure —
// those are marshalled to the device and the loop continues, per the
// driver's failure-isolation rule — only framing/transport errors
// propagate.
func handleRPCRequest(r *wire.Reader, w *wire.Writer, em EmbeddingMap, hooks *Hooks, m *metrics.Metrics) error {
	start := time.Now()
	outcome := "ok"
	defer func() { m.RecordRPCRequest(outcome, time.Since(start).Seconds()) }()

	serviceID, err := r.ReadInt32()
	if err != nil {
		outcome = "error"
		return err
	}
	args, kwargs, err := tag.ReceiveArgs(r, em)
	if err != nil {
		outcome = "error"
		return err
	}
	returnTagBytes, err := r.ReadBytes()
	if err != nil {
		outcome = "error"
		return err
	}

	if serviceID == 0 {
		// setattr builtin: a successful call produces no reply, but a
		// failed one is still marshalled back as RPC_EXCEPTION like any
		// other service failure.
		if err := setAttrBuiltin(args); err != nil {
			outcome = "error"
			return writeRPCException(w, em, err, m)
		}
		return nil
	}

	obj, err := em.RetrieveObject(serviceID)
	if err != nil {
		outcome = "error"
		return writeRPCException(w, em, err, m)
	}
	svc, ok := obj.(Service)
	if !ok {
		outcome = "error"
		return writeRPCException(w, em, &unknownServiceError{ID: serviceID, Object: obj}, m)
	}

	result, callErr := svc.Call(args, kwargs)
	if callErr != nil {
		outcome = "error"
		return writeRPCException(w, em, callErr, m)
	}

	if err := w.Begin(envelope.RPCReply); err != nil {
		outcome = "error"
		return err
	}
	w.WriteBytes(returnTagBytes)
	tags := tag.NewStream(returnTagBytes)
	if err := tag.Send(w, tags, result, result, serviceName(serviceID)); err != nil {
		outcome = "error"
		if _, ok := err.(*tag.ReturnValueError); ok {
			hooks.reportLocal(err)
		}
		return writeRPCException(w, em, err, m)
	}
	return w.Flush()
}

// writeRPCException begins a fresh RPC_EXCEPTION message — any chunks
// buffered by the aborted RPC_REPLY attempt are discarded by Begin — encodes
// err, and flushes.
func writeRPCException(w *wire.Writer, em EmbeddingMap, err error, m *metrics.Metrics) error {
	m.RecordRPCException()
	if beginErr := w.Begin(envelope.RPCException); beginErr != nil {
		return beginErr
	}
	outer := coreexc.Frame{File: "rpcserver", Function: "handleRPCRequest"}
	if encErr := coreexc.EncodeHostException(w, em, err, outer); encErr != nil {
		return encErr
	}
	return w.Flush()
}

func serviceName(id int32) string {
	return "service#" + strconv.Itoa(int(id))
}

// unknownServiceError reports a service id that resolved via the embedding
// map to a value not implementing Service.
type unknownServiceError struct {
	ID     int32
	Object any
}

func (e *unknownServiceError) Error() string {
	return "rpcserver: object for service id " + strconv.Itoa(int(e.ID)) + " does not implement Service"
}
