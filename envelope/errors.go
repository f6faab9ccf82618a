// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package envelope

import "errors"

// Error kinds for the envelope layer. Any of these leaves the session
// unusable; the caller must close and reopen (see package session).
var (
	// ErrReadUnderrun reports that a new header was requested before the
	// previous message was fully drained.
	ErrReadUnderrun = errors.New("envelope: read underrun")

	// ErrReadOverrun reports that a chunk read requested more bytes than
	// remain in the current message.
	ErrReadOverrun = errors.New("envelope: read overrun")

	// ErrMalformedHeader reports a length field below HeaderLen.
	ErrMalformedHeader = errors.New("envelope: malformed header")

	// ErrConnectionClosed reports the peer's in-band shutdown signal: a
	// zero-length envelope received where a real header was expected.
	ErrConnectionClosed = errors.New("envelope: connection closed")

	// ErrUnknownMessageType reports a type byte outside the D2H enumeration.
	ErrUnknownMessageType = errors.New("envelope: unknown message type")

	// ErrChannelClosed reports an operation attempted on a closed channel.
	ErrChannelClosed = errors.New("envelope: channel closed")

	// ErrInvalidArgument reports a nil channel or other misconfiguration.
	ErrInvalidArgument = errors.New("envelope: invalid argument")
)
