// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package control_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/coredev/corecomm/control"
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/wire"
)

// loopback wires a control.Link's writer into a buffer a scripted device
// reply is appended to, simulating a real request/reply transcript.
type loopback struct {
	rd *bytes.Reader
	wr *bytes.Buffer
}

func (l *loopback) Open() error                 { return nil }
func (l *loopback) Close() error                { return nil }
func (l *loopback) Read(p []byte) (int, error)  { return io.ReadFull(l.rd, p) }
func (l *loopback) Write(p []byte) (int, error) { return l.wr.Write(p) }

func newLink(deviceReply []byte) (*control.Link, *bytes.Buffer) {
	wireBuf := &bytes.Buffer{}
	ch := &loopback{rd: bytes.NewReader(deviceReply), wr: wireBuf}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))
	return control.NewLink(r, w), wireBuf
}

func TestCheckIdentScenario(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 0x10, 0x02,
		'A', 'R', 'O', 'R', '1', '.', '0'}
	l, _ := newLink(reply)
	gateware, err := control.CheckIdent(l)
	if err != nil {
		t.Fatal(err)
	}
	if gateware != "1.0" {
		t.Fatalf("gateware = %q", gateware)
	}
	if !control.VersionsMatch("1.0", "1.0") {
		t.Fatal("expected match")
	}
	if !control.VersionsMatch("1.0", "1.0.dirty") {
		t.Fatal("expected .dirty-tolerant match")
	}
	if control.VersionsMatch("1.0", "1.1") {
		t.Fatal("expected mismatch")
	}
}

func TestCheckIdentUnsupportedDevice(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 0x0D, 0x02,
		'X', 'X', 'X', 'X'}
	l, _ := newLink(reply)
	if _, err := control.CheckIdent(l); err != control.ErrUnsupportedDevice {
		t.Fatalf("got %v, want ErrUnsupportedDevice", err)
	}
}

func TestFlashWriteFull(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 9, 0x0D}
	l, _ := newLink(reply)
	if err := control.FlashWrite(l, "k", []byte{0xAA, 0xBB}); err != control.ErrFlashFull {
		t.Fatalf("got %v, want ErrFlashFull", err)
	}
}

func TestFlashReadMiss(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 9, 0x0B}
	l, _ := newLink(reply)
	v, err := control.FlashRead(l, "absent")
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 0 {
		t.Fatalf("got %x, want empty", v)
	}
}

func TestLoadFailed(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 9, 0x06}
	l, _ := newLink(reply)
	if err := control.Load(l, []byte{1, 2, 3}); err != control.ErrLoadFailed {
		t.Fatalf("got %v, want ErrLoadFailed", err)
	}
}

func TestSwitchClockFailed(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 9, 0x04}
	l, _ := newLink(reply)
	if err := control.SwitchClock(l, true); err != control.ErrClockSwitchFailed {
		t.Fatalf("got %v, want ErrClockSwitchFailed", err)
	}
}

func TestUnexpectedReply(t *testing.T) {
	reply := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 9, 0x07}
	l, _ := newLink(reply)
	if err := control.ClearLog(l); err != control.ErrUnexpectedReply {
		t.Fatalf("got %v, want ErrUnexpectedReply", err)
	}
}
