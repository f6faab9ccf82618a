// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpcserver

import "errors"

// Error kinds the RPC server loop can terminate with. A service-level
// failure never escapes ServeLoop — it is always marshalled back to the
// device — but any of these does end the loop.
var (
	// ErrWatchdogExpired reports a WATCHDOG_EXPIRED message: the kernel is
	// considered terminated.
	ErrWatchdogExpired = errors.New("rpcserver: watchdog expired")

	// ErrClockFailure reports a CLOCK_FAILURE message: the kernel is
	// considered terminated.
	ErrClockFailure = errors.New("rpcserver: clock failure")

	// ErrProtocolError reports a message type the serve loop does not
	// recognize as any of RPC_REQUEST, KERNEL_EXCEPTION, KERNEL_FINISHED,
	// KERNEL_STARTUP_FAILED, WATCHDOG_EXPIRED, or CLOCK_FAILURE.
	ErrProtocolError = errors.New("rpcserver: protocol error")
)
