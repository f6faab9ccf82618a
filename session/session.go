// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package session wires the envelope, control, rpcserver and coreexc
// packages into one driver handle: open a Channel, run the identity check,
// drive control operations, load and run a kernel, and serve its RPCs until
// it finishes or faults.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coredev/corecomm/control"
	"github.com/coredev/corecomm/coreexc"
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/internal/corelog"
	"github.com/coredev/corecomm/internal/metrics"
	"github.com/coredev/corecomm/rpcserver"
	"github.com/coredev/corecomm/wire"
)

// SoftwareVersion is the version string this driver build presents to
// VersionsMatch against the device's reported gateware version.
const SoftwareVersion = "1.0"

// EmbeddingMap is the subset of the embedding map contract session needs to
// pass through to coreexc and rpcserver.
type EmbeddingMap interface {
	StoreObject(obj any) (int32, error)
	RetrieveObject(id int32) (any, error)
}

// Driver is one open connection to a device core, from identity check
// through to an optional kernel run. It is not safe for concurrent use from
// more than one goroutine, matching the driver's half-duplex request/reply
// model.
type Driver struct {
	id      string
	ch      envelope.Channel
	link    *control.Link
	em      EmbeddingMap
	sym     coreexc.Symbolizer
	dem     coreexc.Demangler
	metrics *metrics.Metrics

	device string

	gatewareVersion string
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithEmbeddingMap supplies the embedding map used to resolve RPC service
// ids and embedded exception types. It has no default: Open fails if it is
// omitted.
func WithEmbeddingMap(em EmbeddingMap) Option {
	return func(d *Driver) { d.em = em }
}

// WithSymbolizer supplies the backtrace symbolizer used when decoding a
// device-raised exception. Defaults to a no-op symbolizer that returns no
// frames, leaving only the direct frame in the traceback.
func WithSymbolizer(sym coreexc.Symbolizer) Option {
	return func(d *Driver) { d.sym = sym }
}

// WithDemangler supplies the function-name demangler used when decoding a
// device-raised exception. Defaults to a no-op demangler that passes names
// through unchanged.
func WithDemangler(dem coreexc.Demangler) Option {
	return func(d *Driver) { d.dem = dem }
}

// WithMetrics attaches a metrics collector. Defaults to metrics.NullMetrics().
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

type noopSymbolizer struct{}

func (noopSymbolizer) Symbolize(addrs []int32) ([]coreexc.Frame, error) { return nil, nil }

type noopDemangler struct{}

func (noopDemangler) Demangle(fns []string) ([]string, error) { return fns, nil }

// Open opens ch, performs the identity check, and returns a ready Driver.
// device is a human-readable description of the link (an address or path)
// used only for logging.
func Open(ctx context.Context, ch envelope.Channel, device string, opts ...Option) (*Driver, error) {
	d := &Driver{
		id:      uuid.New().String(),
		ch:      ch,
		device:  device,
		sym:     noopSymbolizer{},
		dem:     noopDemangler{},
		metrics: metrics.NullMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.em == nil {
		return nil, fmt.Errorf("session: WithEmbeddingMap is required")
	}

	logCtx := corelog.WithSession(ctx, &corelog.SessionContext{SessionID: d.id, Device: device})

	if err := ch.Open(); err != nil {
		corelog.ErrorCtx(logCtx, "open channel failed", "error", err)
		return nil, err
	}

	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))
	d.link = control.NewLink(r, w)

	start := time.Now()
	gatewareVersion, err := control.CheckIdent(d.link)
	d.metrics.RecordControlOp("check_ident", outcome(err), time.Since(start).Seconds())
	if err != nil {
		_ = ch.Close()
		corelog.ErrorCtx(logCtx, "check_ident failed", "error", err)
		return nil, err
	}
	d.gatewareVersion = gatewareVersion

	if !control.VersionsMatch(gatewareVersion, SoftwareVersion) {
		corelog.WarnCtx(logCtx, "gateware/software version mismatch",
			"gatewareVersion", gatewareVersion, "softwareVersion", SoftwareVersion)
	}

	d.metrics.SessionOpened()
	corelog.InfoCtx(logCtx, "session opened", "gatewareVersion", gatewareVersion)
	return d, nil
}

// ID is the session's unique identifier, stamped at Open.
func (d *Driver) ID() string { return d.id }

// GatewareVersion is the version string reported by the device at Open.
func (d *Driver) GatewareVersion() string { return d.gatewareVersion }

func (d *Driver) ctx(ctx context.Context) context.Context {
	return corelog.WithSession(ctx, &corelog.SessionContext{SessionID: d.id, Device: d.device})
}

func (d *Driver) controlOp(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d.metrics.RecordControlOp(name, outcome(err), time.Since(start).Seconds())
	if err != nil {
		corelog.ErrorCtx(d.ctx(ctx), name+" failed", "error", err)
	}
	return err
}

// SwitchClock requests the device switch its reference clock.
func (d *Driver) SwitchClock(ctx context.Context, external bool) error {
	return d.controlOp(ctx, "switch_clock", func() error { return control.SwitchClock(d.link, external) })
}

// GetLog retrieves the device's log buffer.
func (d *Driver) GetLog(ctx context.Context) (string, error) {
	var out string
	err := d.controlOp(ctx, "get_log", func() error {
		var opErr error
		out, opErr = control.GetLog(d.link)
		return opErr
	})
	return out, err
}

// ClearLog clears the device's log buffer.
func (d *Driver) ClearLog(ctx context.Context) error {
	return d.controlOp(ctx, "clear_log", func() error { return control.ClearLog(d.link) })
}

// FlashRead reads one flash key/value entry.
func (d *Driver) FlashRead(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := d.controlOp(ctx, "flash_read", func() error {
		var opErr error
		out, opErr = control.FlashRead(d.link, key)
		return opErr
	})
	return out, err
}

// FlashWrite writes one flash key/value entry.
func (d *Driver) FlashWrite(ctx context.Context, key string, value []byte) error {
	return d.controlOp(ctx, "flash_write", func() error { return control.FlashWrite(d.link, key, value) })
}

// FlashErase erases the entire flash key/value store.
func (d *Driver) FlashErase(ctx context.Context) error {
	return d.controlOp(ctx, "flash_erase", func() error { return control.FlashErase(d.link) })
}

// FlashRemove removes one flash key/value entry.
func (d *Driver) FlashRemove(ctx context.Context, key string) error {
	return d.controlOp(ctx, "flash_remove", func() error { return control.FlashRemove(d.link, key) })
}

// Load uploads a compiled kernel library image.
func (d *Driver) Load(ctx context.Context, image []byte) error {
	return d.controlOp(ctx, "load", func() error { return control.Load(d.link, image) })
}

// Run starts the loaded kernel and serves its RPCs until it finishes, a
// device-raised exception arrives, or a terminal fault occurs. hooks may be
// nil.
func (d *Driver) Run(ctx context.Context, hooks *rpcserver.Hooks) error {
	logCtx := d.ctx(ctx)
	start := time.Now()
	if err := control.Run(d.link); err != nil {
		d.metrics.RecordControlOp("run", outcome(err), time.Since(start).Seconds())
		corelog.ErrorCtx(logCtx, "run failed to start", "error", err)
		return err
	}

	err := rpcserver.ServeLoop(d.link.R, d.link.W, d.em, d.sym, d.dem, hooks, d.metrics)
	d.metrics.RecordControlOp("run", outcome(err), time.Since(start).Seconds())
	if err != nil {
		corelog.InfoCtx(logCtx, "kernel run ended", "error", err)
	} else {
		corelog.InfoCtx(logCtx, "kernel run finished")
	}
	return err
}

// ResetSession sends the zero-length envelope that resets device framing
// state out of band, without closing the channel.
func (d *Driver) ResetSession() error {
	return d.link.W.ResetSession()
}

// Close closes the underlying channel.
func (d *Driver) Close() error {
	d.metrics.SessionClosed()
	corelog.Info("session closed", "session_id", d.id, "device", d.device)
	return d.ch.Close()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
