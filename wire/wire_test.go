// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/wire"
)

type loopback struct {
	rd *bytes.Reader
	wr *bytes.Buffer
}

func (l *loopback) Open() error                 { return nil }
func (l *loopback) Close() error                { return nil }
func (l *loopback) Read(p []byte) (int, error)  { return io.ReadFull(l.rd, p) }
func (l *loopback) Write(p []byte) (int, error) { return l.wr.Write(p) }

func TestPrimitiveRoundtrip(t *testing.T) {
	wireBuf := &bytes.Buffer{}
	w := wire.NewWriter(envelope.NewWriter(&loopback{wr: wireBuf}))
	w.Begin(envelope.LoadLibrary)
	w.WriteInt8(0xAB)
	w.WriteInt32(-123456)
	w.WriteInt64(-9111222333)
	w.WriteFloat64(3.5)
	w.WriteBytes([]byte{1, 2, 3})
	if err := w.WriteString("héllo"); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := wire.NewReader(envelope.NewReader(&loopback{rd: bytes.NewReader(wireBuf.Bytes())}))
	if err := r.ReadHeader(); err != nil {
		t.Fatal(err)
	}
	if v, err := r.ReadInt8(); err != nil || v != 0xAB {
		t.Fatalf("ReadInt8 = %v,%v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -123456 {
		t.Fatalf("ReadInt32 = %v,%v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -9111222333 {
		t.Fatalf("ReadInt64 = %v,%v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 3.5 {
		t.Fatalf("ReadFloat64 = %v,%v", v, err)
	}
	if v, err := r.ReadBytes(); err != nil || !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("ReadBytes = %v,%v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "héllo" {
		t.Fatalf("ReadString = %q,%v", v, err)
	}
	if err := r.Drain(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteStringRejectsEmbeddedNUL(t *testing.T) {
	wireBuf := &bytes.Buffer{}
	w := wire.NewWriter(envelope.NewWriter(&loopback{wr: wireBuf}))
	w.Begin(envelope.FlashWriteRequest)
	if err := w.WriteString("a\x00b"); err != wire.ErrStringContainsNUL {
		t.Fatalf("got %v, want ErrStringContainsNUL", err)
	}
}

func TestReadStringLossyReplacesInvalidUTF8(t *testing.T) {
	wireBuf := &bytes.Buffer{}
	w := wire.NewWriter(envelope.NewWriter(&loopback{wr: wireBuf}))
	w.Begin(envelope.LogRequest)
	w.WriteBytes(append([]byte("ok-"), 0xFF, 0xFE, 0))
	w.Flush()

	r := wire.NewReader(envelope.NewReader(&loopback{rd: bytes.NewReader(wireBuf.Bytes())}))
	r.ReadHeader()
	got, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains([]byte(got), []byte("ok-")) {
		t.Fatalf("got %q", got)
	}
}
