// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rpcserver_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/coredev/corecomm/coreexc"
	"github.com/coredev/corecomm/envelope"
	"github.com/coredev/corecomm/internal/metrics"
	"github.com/coredev/corecomm/rpcserver"
	"github.com/coredev/corecomm/tag"
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

type fakeEmbeddingMap struct {
	objects map[int32]any
	next    int32
}

func newFakeEmbeddingMap() *fakeEmbeddingMap {
	return &fakeEmbeddingMap{objects: make(map[int32]any), next: 1}
}

func (m *fakeEmbeddingMap) StoreObject(obj any) (int32, error) {
	id := m.next
	m.next++
	m.objects[id] = obj
	return id, nil
}

func (m *fakeEmbeddingMap) RetrieveObject(id int32) (any, error) {
	obj, ok := m.objects[id]
	if !ok {
		return nil, errors.New("unknown id")
	}
	return obj, nil
}

type noopSymbolizer struct{}

func (noopSymbolizer) Symbolize(addrs []int32) ([]coreexc.Frame, error) { return nil, nil }

type noopDemangler struct{}

func (noopDemangler) Demangle(fns []string) ([]string, error) { return fns, nil }

type adder struct{}

func (adder) Call(args []tag.Value, kwargs map[string]tag.Value) (tag.Value, error) {
	return tag.Int32Val(args[0].Int32 + args[1].Int32), nil
}

func buildRPCRequest(serviceID int32, args []byte, returnTag []byte) []byte {
	var body []byte
	body = append(body, be32(serviceID)...)
	body = append(body, args...)
	body = append(body, be32(int32(len(returnTag)))...)
	body = append(body, returnTag...)
	return frame(envelope.RPCRequest, body)
}

func be32(v int32) []byte {
	return []byte{byte(uint32(v) >> 24), byte(uint32(v) >> 16), byte(uint32(v) >> 8), byte(uint32(v))}
}

func frame(ty envelope.D2HMsgType, body []byte) []byte {
	out := []byte{0x5A, 0x5A, 0x5A, 0x5A, 0, 0, 0, 0, byte(ty)}
	total := envelope.HeaderLen + len(body)
	out[4], out[5], out[6], out[7] = byte(total>>24), byte(total>>16), byte(total>>8), byte(total)
	return append(out, body...)
}

func TestServeLoopRPCSum(t *testing.T) {
	// args: i(2) i(3) \0 ; return tag "i"
	args := []byte{'i', 0, 0, 0, 2, 'i', 0, 0, 0, 3, 0}
	rpcReq := buildRPCRequest(7, args, []byte{'i'})
	finished := frame(envelope.KernelFinished, nil)

	in := append(rpcReq, finished...)
	wireBuf := &bytes.Buffer{}
	ch := &loopback{rd: bytes.NewReader(in), wr: wireBuf}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))

	em := newFakeEmbeddingMap()
	em.objects[7] = adder{}

	err := rpcserver.ServeLoop(r, w, em, noopSymbolizer{}, noopDemangler{}, nil, metrics.NullMetrics())
	if err != nil {
		t.Fatal(err)
	}

	out := wireBuf.Bytes()
	// RPC_REPLY: sync+len+type(7) + returnTagBytes(len-prefixed "i") + i32(5)
	if out[8] != byte(envelope.RPCReply) {
		t.Fatalf("first reply type = %d, want RPC_REPLY", out[8])
	}
	tagLen := be32ToInt(out[9:13])
	if tagLen != 1 || out[13] != 'i' {
		t.Fatalf("return tag bytes wrong: %x", out[9:14])
	}
	sum := be32ToInt(out[14:18])
	if sum != 5 {
		t.Fatalf("sum = %d, want 5", sum)
	}
}

func be32ToInt(b []byte) int32 {
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func TestServeLoopSetAttrBuiltin(t *testing.T) {
	type target struct{ X int32 }
	obj := &target{}

	em := newFakeEmbeddingMap()
	id, _ := em.StoreObject(obj)

	var args []byte
	args = append(args, 'O')
	args = append(args, be32(id)...)
	args = append(args, 's')
	args = append(args, be32(2)...)
	args = append(args, 'X', 0)
	args = append(args, 'i')
	args = append(args, be32(42)...)
	args = append(args, 0)

	rpcReq := buildRPCRequest(0, args, nil)
	finished := frame(envelope.KernelFinished, nil)
	in := append(rpcReq, finished...)

	wireBuf := &bytes.Buffer{}
	ch := &loopback{rd: bytes.NewReader(in), wr: wireBuf}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))

	if err := rpcserver.ServeLoop(r, w, em, noopSymbolizer{}, noopDemangler{}, nil, metrics.NullMetrics()); err != nil {
		t.Fatal(err)
	}
	if obj.X != 42 {
		t.Fatalf("obj.X = %d, want 42", obj.X)
	}
	if wireBuf.Len() != 0 {
		t.Fatalf("setattr must not write a reply, got %d bytes", wireBuf.Len())
	}
}

func TestServeLoopSetAttrFailureWritesException(t *testing.T) {
	type target struct{ X int32 }
	obj := &target{}

	em := newFakeEmbeddingMap()
	id, _ := em.StoreObject(obj)

	// Attribute "Nope" does not exist on the target; the failure must come
	// back as RPC_EXCEPTION even though a successful setattr has no reply.
	var args []byte
	args = append(args, 'O')
	args = append(args, be32(id)...)
	args = append(args, 's')
	args = append(args, be32(5)...)
	args = append(args, 'N', 'o', 'p', 'e', 0)
	args = append(args, 'i')
	args = append(args, be32(1)...)
	args = append(args, 0)

	rpcReq := buildRPCRequest(0, args, nil)
	finished := frame(envelope.KernelFinished, nil)
	in := append(rpcReq, finished...)

	wireBuf := &bytes.Buffer{}
	ch := &loopback{rd: bytes.NewReader(in), wr: wireBuf}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))

	if err := rpcserver.ServeLoop(r, w, em, noopSymbolizer{}, noopDemangler{}, nil, metrics.NullMetrics()); err != nil {
		t.Fatal(err)
	}
	out := wireBuf.Bytes()
	if len(out) < envelope.HeaderLen || out[8] != byte(envelope.RPCException) {
		t.Fatalf("expected an RPC_EXCEPTION reply, got %x", out)
	}
}

func TestServeLoopWatchdogExpired(t *testing.T) {
	in := frame(envelope.WatchdogExpired, nil)
	ch := &loopback{rd: bytes.NewReader(in), wr: &bytes.Buffer{}}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))
	err := rpcserver.ServeLoop(r, w, newFakeEmbeddingMap(), noopSymbolizer{}, noopDemangler{}, nil, metrics.NullMetrics())
	if err != rpcserver.ErrWatchdogExpired {
		t.Fatalf("got %v, want ErrWatchdogExpired", err)
	}
}

// TestServeLoopRecordsRPCMetrics confirms the dispatch path actually drives
// the metrics collector passed to it, not just a nil one: one successful RPC
// and one unknown-service-id RPC must show up as a request in each outcome
// bucket, and the failed one must also bump the exception counter.
func TestServeLoopRecordsRPCMetrics(t *testing.T) {
	okArgs := []byte{'i', 0, 0, 0, 2, 'i', 0, 0, 0, 3, 0}
	okReq := buildRPCRequest(7, okArgs, []byte{'i'})
	badReq := buildRPCRequest(99, []byte{0}, nil)
	finished := frame(envelope.KernelFinished, nil)

	in := append(append(okReq, badReq...), finished...)
	wireBuf := &bytes.Buffer{}
	ch := &loopback{rd: bytes.NewReader(in), wr: wireBuf}
	r := wire.NewReader(envelope.NewReader(ch))
	w := wire.NewWriter(envelope.NewWriter(ch))

	em := newFakeEmbeddingMap()
	em.objects[7] = adder{}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if err := rpcserver.ServeLoop(r, w, em, noopSymbolizer{}, noopDemangler{}, nil, m); err != nil {
		t.Fatal(err)
	}

	mf, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	requests := counterVecValues(mf, "corecomm_rpc_requests_total")
	if requests["ok"] != 1 {
		t.Fatalf("requests[ok] = %v, want 1", requests["ok"])
	}
	if requests["error"] != 1 {
		t.Fatalf("requests[error] = %v, want 1", requests["error"])
	}
	if got := counterValue(mf, "corecomm_rpc_exceptions_total"); got != 1 {
		t.Fatalf("corecomm_rpc_exceptions_total = %v, want 1", got)
	}
}

func counterVecValues(mf []*dto.MetricFamily, name string) map[string]float64 {
	out := map[string]float64{}
	for _, f := range mf {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			var outcome string
			for _, l := range metric.GetLabel() {
				if l.GetName() == "outcome" {
					outcome = l.GetValue()
				}
			}
			out[outcome] = metric.GetCounter().GetValue()
		}
	}
	return out
}

func counterValue(mf []*dto.MetricFamily, name string) float64 {
	for _, f := range mf {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
