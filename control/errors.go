// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package control

import "errors"

// Error kinds for control operations. Any of these except ErrFlashFull
// leaves the session unusable.
var (
	// ErrUnsupportedDevice reports an IDENT_REPLY whose magic does not match
	// IdentMagic.
	ErrUnsupportedDevice = errors.New("control: unsupported device")

	// ErrUnexpectedReply reports a reply type that does not match the one
	// awaited by the request just sent.
	ErrUnexpectedReply = errors.New("control: unexpected reply")

	// ErrClockSwitchFailed reports a CLOCK_SWITCH_FAILED reply to SwitchClock.
	ErrClockSwitchFailed = errors.New("control: clock switch failed")

	// ErrFlashFull reports a FLASH_ERROR_REPLY to FlashWrite. Unlike the
	// other errors here, the session remains usable afterward.
	ErrFlashFull = errors.New("control: flash full")

	// ErrLoadFailed reports a LOAD_FAILED reply to Load: treated as an
	// explicit error rather than a generic unexpected reply.
	ErrLoadFailed = errors.New("control: kernel library load failed")

	// ErrKernelStartupFailed reports a KERNEL_STARTUP_FAILED reply following
	// Run (same explicit-error treatment as ErrLoadFailed).
	ErrKernelStartupFailed = errors.New("control: kernel startup failed")
)
