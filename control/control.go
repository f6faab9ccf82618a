// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package control implements the driver's single request/reply transactions:
// identity check, clock switch, log read/clear, flash key/value
// read/write/erase/remove, kernel library load, and kernel run. Each
// function writes exactly one request and consumes exactly one reply before
// returning, matching the driver's half-duplex request/reply model.
package control

import (
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/wire"
)

// Link is the read/write pair a control operation transacts over. It is
// supplied by package session, which owns the underlying envelope.Channel.
type Link struct {
	R *wire.Reader
	W *wire.Writer
}

// NewLink wraps a reader/writer pair sharing one Channel.
func NewLink(r *wire.Reader, w *wire.Writer) *Link {
	return &Link{R: r, W: w}
}

func (l *Link) expect(want envelope.D2HMsgType) error {
	if err := l.R.ReadHeader(); err != nil {
		return err
	}
	if !l.R.Expect(want) {
		return ErrUnexpectedReply
	}
	return nil
}

// CheckIdent performs IDENT_REQUEST/IDENT_REPLY and returns the gateware
// version string. It does not compare versions or log; see VersionsMatch and
// package session, which owns logging.
func CheckIdent(l *Link) (gatewareVersion string, err error) {
	if err := l.W.WriteEmpty(envelope.IdentRequest); err != nil {
		return "", err
	}
	if err := l.expect(envelope.IdentReply); err != nil {
		return "", err
	}
	magic, err := l.R.ReadChunk(len(envelope.IdentMagic))
	if err != nil {
		return "", err
	}
	if string(magic) != envelope.IdentMagic {
		return "", ErrUnsupportedDevice
	}
	rest, err := l.R.ReadChunk(int(l.R.Remaining()))
	if err != nil {
		return "", err
	}
	return string(rest), nil
}

// VersionsMatch reports whether gateware and software versions agree.
// A gateware version whose ".dirty"-suffixed form equals the software
// version also counts as a match; nothing is ever stripped from the
// gateware side.
func VersionsMatch(gatewareVersion, softwareVersion string) bool {
	return gatewareVersion == softwareVersion || gatewareVersion+".dirty" == softwareVersion
}

// SwitchClock requests the device switch to an external (or internal)
// reference clock.
func SwitchClock(l *Link, external bool) error {
	if err := l.W.Begin(envelope.SwitchClock); err != nil {
		return err
	}
	if external {
		l.W.WriteInt8(1)
	} else {
		l.W.WriteInt8(0)
	}
	if err := l.W.Flush(); err != nil {
		return err
	}
	if err := l.R.ReadHeader(); err != nil {
		return err
	}
	if l.R.CurrentType() == envelope.ClockSwitchFailed {
		if err := l.R.Drain(); err != nil {
			return err
		}
		return ErrClockSwitchFailed
	}
	if !l.R.Expect(envelope.ClockSwitchCompleted) {
		return ErrUnexpectedReply
	}
	return l.R.Drain()
}

// GetLog requests the device's log buffer, decoded lossily as UTF-8 (see
// package wire's ReadString).
func GetLog(l *Link) (string, error) {
	if err := l.W.WriteEmpty(envelope.LogRequest); err != nil {
		return "", err
	}
	if err := l.expect(envelope.LogReply); err != nil {
		return "", err
	}
	raw, err := l.R.ReadChunk(int(l.R.Remaining()))
	if err != nil {
		return "", err
	}
	return lossyUTF8(raw), nil
}

// ClearLog requests the device clear its log buffer.
func ClearLog(l *Link) error {
	if err := l.W.WriteEmpty(envelope.LogClear); err != nil {
		return err
	}
	return l.expect(envelope.LogReply)
}

// FlashRead reads a flash key/value entry; a missing key returns a
// zero-length value, not an error.
func FlashRead(l *Link, key string) ([]byte, error) {
	if err := l.W.Begin(envelope.FlashReadRequest); err != nil {
		return nil, err
	}
	if err := l.W.WriteString(key); err != nil {
		return nil, err
	}
	if err := l.W.Flush(); err != nil {
		return nil, err
	}
	if err := l.expect(envelope.FlashReadReply); err != nil {
		return nil, err
	}
	return l.R.ReadChunk(int(l.R.Remaining()))
}

// FlashWrite writes a flash key/value entry. ErrFlashFull is returned (and
// the session remains usable) if the device reports the flash is full.
func FlashWrite(l *Link, key string, value []byte) error {
	if err := l.W.Begin(envelope.FlashWriteRequest); err != nil {
		return err
	}
	if err := l.W.WriteString(key); err != nil {
		return err
	}
	l.W.WriteBytes(value)
	if err := l.W.Flush(); err != nil {
		return err
	}
	if err := l.R.ReadHeader(); err != nil {
		return err
	}
	if l.R.CurrentType() == envelope.FlashErrorReply {
		if err := l.R.Drain(); err != nil {
			return err
		}
		return ErrFlashFull
	}
	if !l.R.Expect(envelope.FlashOKReply) {
		return ErrUnexpectedReply
	}
	return l.R.Drain()
}

// FlashErase erases the entire flash key/value store.
func FlashErase(l *Link) error {
	if err := l.W.WriteEmpty(envelope.FlashEraseRequest); err != nil {
		return err
	}
	return l.expect(envelope.FlashOKReply)
}

// FlashRemove removes a single flash key/value entry.
func FlashRemove(l *Link, key string) error {
	if err := l.W.Begin(envelope.FlashRemoveRequest); err != nil {
		return err
	}
	if err := l.W.WriteString(key); err != nil {
		return err
	}
	if err := l.W.Flush(); err != nil {
		return err
	}
	return l.expect(envelope.FlashOKReply)
}

// Load uploads a compiled kernel library image. ErrLoadFailed is returned if
// the device rejects it: LOAD_FAILED is acted on explicitly rather than
// treated as a generic unexpected reply.
func Load(l *Link, image []byte) error {
	if err := l.W.Begin(envelope.LoadLibrary); err != nil {
		return err
	}
	l.W.WriteChunk(image)
	if err := l.W.Flush(); err != nil {
		return err
	}
	if err := l.R.ReadHeader(); err != nil {
		return err
	}
	if l.R.CurrentType() == envelope.LoadFailed {
		if err := l.R.Drain(); err != nil {
			return err
		}
		return ErrLoadFailed
	}
	if !l.R.Expect(envelope.LoadCompleted) {
		return ErrUnexpectedReply
	}
	return l.R.Drain()
}

// Run starts the loaded kernel. There is no immediate reply: the link
// transitions to the RPC serve-loop regime (package rpcserver), during
// which a KERNEL_STARTUP_FAILED message is still possible as the very first
// inbound header and must be treated as an explicit error there, same as
// Load's LOAD_FAILED.
func Run(l *Link) error {
	return l.W.WriteEmpty(envelope.RunKernel)
}

// lossyUTF8 decodes raw with the same invalid-sequence replacement ReadString
// applies to NUL-terminated strings (package wire); get_log's reply body is
// not NUL-terminated so it is read as a raw chunk and decoded here instead.
func lossyUTF8(b []byte) string {
	return wire.LossyUTF8(b)
}
