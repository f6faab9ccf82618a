// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package session_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/coredev/corecomm/embedmap"
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/rpcserver"
	"github.com/coredev/corecomm/session"
	"github.com/coredev/corecomm/tag"
)

// loopback simulates a device transcript: Read drains a scripted buffer,
// Write appends to a separate buffer the test inspects.
type loopback struct {
	rd *bytes.Reader
	wr *bytes.Buffer
}

func (l *loopback) Open() error                 { return nil }
func (l *loopback) Close() error                { return nil }
func (l *loopback) Read(p []byte) (int, error)  { return io.ReadFull(l.rd, p) }
func (l *loopback) Write(p []byte) (int, error) { return l.wr.Write(p) }

func be32(v int32) []byte {
	return []byte{byte(uint32(v) >> 24), byte(uint32(v) >> 16), byte(uint32(v) >> 8), byte(uint32(v))}
}

func frame(ty envelope.D2HMsgType, body []byte) []byte {
	out := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 0, byte(ty)}
	total := envelope.HeaderLen + len(body)
	out[4], out[5], out[6], out[7] = byte(total>>24), byte(total>>16), byte(total>>8), byte(total)
	return append(out, body...)
}

func identReply(version string) []byte {
	body := append([]byte(envelope.IdentMagic), []byte(version)...)
	return frame(envelope.IdentReply, body)
}

type adder struct{}

func (adder) Call(args []tag.Value, kwargs map[string]tag.Value) (tag.Value, error) {
	return tag.Int32Val(args[0].Int32 + args[1].Int32), nil
}

func TestOpenMatchingVersion(t *testing.T) {
	in := identReply(session.SoftwareVersion)
	ch := &loopback{rd: bytes.NewReader(in), wr: &bytes.Buffer{}}

	em := embedmap.New()
	d, err := session.Open(context.Background(), ch, "pipe://test", session.WithEmbeddingMap(em))
	if err != nil {
		t.Fatal(err)
	}
	if d.GatewareVersion() != session.SoftwareVersion {
		t.Fatalf("gatewareVersion = %q", d.GatewareVersion())
	}
	if d.ID() == "" {
		t.Fatal("expected a non-empty session id")
	}
}

func TestOpenUnsupportedDevice(t *testing.T) {
	in := frame(envelope.IdentReply, append([]byte("XXXX"), []byte("1.0")...))
	ch := &loopback{rd: bytes.NewReader(in), wr: &bytes.Buffer{}}

	em := embedmap.New()
	_, err := session.Open(context.Background(), ch, "pipe://test", session.WithEmbeddingMap(em))
	if err == nil {
		t.Fatal("expected an error for an unsupported device magic")
	}
}

func TestRunServesRPC(t *testing.T) {
	args := []byte{'i', 0, 0, 0, 2, 'i', 0, 0, 0, 3, 0}
	rpcReqBody := append(append(be32(7), args...), append(be32(1), 'i')...)
	rpcReq := frame(envelope.RPCRequest, rpcReqBody)
	finished := frame(envelope.KernelFinished, nil)

	in := append(identReply("1.0"), append(rpcReq, finished...)...)
	ch := &loopback{rd: bytes.NewReader(in), wr: &bytes.Buffer{}}

	// embedmap assigns ids sequentially from 1; register six placeholders
	// so adder lands on service id 7.
	em := embedmap.New()
	for i := 0; i < 6; i++ {
		if _, err := em.StoreObject(fakeIdentity(i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := em.StoreObject(adder{}); err != nil {
		t.Fatal(err)
	}

	d, err := session.Open(context.Background(), ch, "pipe://test", session.WithEmbeddingMap(em))
	if err != nil {
		t.Fatal(err)
	}

	var hookErr error
	hooks := &rpcserver.Hooks{OnLocalError: func(err error) { hookErr = err }}
	if err := d.Run(context.Background(), hooks); err != nil {
		t.Fatal(err)
	}
	if hookErr != nil {
		t.Fatalf("unexpected local error: %v", hookErr)
	}
}

// fakeIdentity is a distinct comparable value per index, used only to
// advance embedmap's id counter predictably in tests.
type fakeIdentity int
