// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package envelope implements the sync-prefixed, length-prefixed, typed
// message envelope that frames every message exchanged between the host and
// the core device, together with the abstract byte channel it rides on.
//
// Wire format:
//
//	sync[4]=0x5A,0x5A,0x5A,0x5A | length[4] BE u32 | type[1] u8 | body[length-9]
//
// A length of zero (no type byte, no body) is the out-of-band session-reset
// sentinel.
package envelope

// SyncByte is repeated four times at the start of every envelope, including
// the reset sentinel.
const SyncByte = 0x5A

// HeaderLen is the number of header bytes counted in the length field: four
// sync bytes, four length bytes, one type byte.
const HeaderLen = 9

// IdentMagic is the four-byte runtime identity marker returned by IDENT_REPLY.
const IdentMagic = "AROR"

// H2DMsgType enumerates host-to-device message types.
type H2DMsgType uint8

const (
	LogRequest         H2DMsgType = 1
	LogClear           H2DMsgType = 2
	IdentRequest       H2DMsgType = 3
	SwitchClock        H2DMsgType = 4
	LoadLibrary        H2DMsgType = 5
	RunKernel          H2DMsgType = 6
	RPCReply           H2DMsgType = 7
	RPCException       H2DMsgType = 8
	FlashReadRequest   H2DMsgType = 9
	FlashWriteRequest  H2DMsgType = 10
	FlashEraseRequest  H2DMsgType = 11
	FlashRemoveRequest H2DMsgType = 12
)

func (t H2DMsgType) String() string {
	switch t {
	case LogRequest:
		return "LOG_REQUEST"
	case LogClear:
		return "LOG_CLEAR"
	case IdentRequest:
		return "IDENT_REQUEST"
	case SwitchClock:
		return "SWITCH_CLOCK"
	case LoadLibrary:
		return "LOAD_LIBRARY"
	case RunKernel:
		return "RUN_KERNEL"
	case RPCReply:
		return "RPC_REPLY"
	case RPCException:
		return "RPC_EXCEPTION"
	case FlashReadRequest:
		return "FLASH_READ_REQUEST"
	case FlashWriteRequest:
		return "FLASH_WRITE_REQUEST"
	case FlashEraseRequest:
		return "FLASH_ERASE_REQUEST"
	case FlashRemoveRequest:
		return "FLASH_REMOVE_REQUEST"
	default:
		return "H2D(unknown)"
	}
}

// D2HMsgType enumerates device-to-host message types.
type D2HMsgType uint8

const (
	LogReply             D2HMsgType = 1
	IdentReply           D2HMsgType = 2
	ClockSwitchCompleted D2HMsgType = 3
	ClockSwitchFailed    D2HMsgType = 4
	LoadCompleted        D2HMsgType = 5
	LoadFailed           D2HMsgType = 6
	KernelFinished       D2HMsgType = 7
	KernelStartupFailed  D2HMsgType = 8
	KernelException      D2HMsgType = 9
	RPCRequest           D2HMsgType = 10
	FlashReadReply       D2HMsgType = 11
	FlashOKReply         D2HMsgType = 12
	FlashErrorReply      D2HMsgType = 13
	WatchdogExpired      D2HMsgType = 14
	ClockFailure         D2HMsgType = 15
)

// noD2HType is the zero value meaning "no message currently parsed".
const noD2HType D2HMsgType = 0

func (t D2HMsgType) String() string {
	switch t {
	case LogReply:
		return "LOG_REPLY"
	case IdentReply:
		return "IDENT_REPLY"
	case ClockSwitchCompleted:
		return "CLOCK_SWITCH_COMPLETED"
	case ClockSwitchFailed:
		return "CLOCK_SWITCH_FAILED"
	case LoadCompleted:
		return "LOAD_COMPLETED"
	case LoadFailed:
		return "LOAD_FAILED"
	case KernelFinished:
		return "KERNEL_FINISHED"
	case KernelStartupFailed:
		return "KERNEL_STARTUP_FAILED"
	case KernelException:
		return "KERNEL_EXCEPTION"
	case RPCRequest:
		return "RPC_REQUEST"
	case FlashReadReply:
		return "FLASH_READ_REPLY"
	case FlashOKReply:
		return "FLASH_OK_REPLY"
	case FlashErrorReply:
		return "FLASH_ERROR_REPLY"
	case WatchdogExpired:
		return "WATCHDOG_EXPIRED"
	case ClockFailure:
		return "CLOCK_FAILURE"
	default:
		return "D2H(unknown)"
	}
}

// knownD2H reports whether raw is a defined D2HMsgType value.
func knownD2H(raw uint8) bool {
	return raw >= 1 && raw <= 15
}
