// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package envelope

import (
	"io"
	"net"
	"sync"
)

// Channel is the abstract full-duplex byte stream the envelope layer rides
// on. Transport (TCP, serial, ...) is explicitly out of scope for this
// module; Channel is the one contract the core requires of it.
//
// Open and Close must be idempotent. Read and Write must either complete
// the requested length or fail.
type Channel interface {
	Open() error
	Close() error
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
}

// Pause is defined as Close: the session may be resumed by reopening the
// channel and writing the reset sentinel (see Writer.ResetSession).
func Pause(ch Channel) error { return ch.Close() }

// netChannel adapts a net.Conn (TCP, Unix stream, ...) to Channel. Every
// transport that reaches this driver speaks the same sync-framed envelope,
// so the per-transport constructors below differ only in how the socket is
// dialed or accepted.
type netChannel struct {
	mu   sync.Mutex
	conn net.Conn
	dial func() (net.Conn, error)
}

// NewTCPChannel returns a Channel that dials addr (host:port) on Open and
// closes the connection on Close. Dialing is deferred to Open so a Channel
// value can be constructed before the device is reachable.
func NewTCPChannel(addr string) Channel {
	return &netChannel{dial: func() (net.Conn, error) { return net.Dial("tcp", addr) }}
}

// NewUnixChannel returns a Channel over a Unix domain stream socket at path.
func NewUnixChannel(path string) Channel {
	return &netChannel{dial: func() (net.Conn, error) { return net.Dial("unix", path) }}
}

// NewConnChannel adapts an already-established net.Conn (e.g. accepted from
// a listener, or handed in by a caller that owns the dial policy).
func NewConnChannel(conn net.Conn) Channel {
	return &netChannel{conn: conn}
}

func (c *netChannel) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	if c.dial == nil {
		return ErrInvalidArgument
	}
	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *netChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *netChannel) Read(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0, ErrChannelClosed
	}
	return io.ReadFull(conn, p)
}

func (c *netChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0, ErrChannelClosed
	}
	return conn.Write(p)
}

// pipeChannel wraps an in-memory io.Reader/io.Writer pair (e.g. io.Pipe, or
// the two ends of a simulated device) as a Channel, for tests and in-process
// device simulations.
type pipeChannel struct {
	mu     sync.Mutex
	r      io.Reader
	w      io.Writer
	closed bool
}

// NewPipeChannel returns a Channel backed by an existing reader/writer pair.
// Open is a no-op; Close only marks the channel unusable, it does not close
// r or w (the caller owns their lifetime).
func NewPipeChannel(r io.Reader, w io.Writer) Channel {
	return &pipeChannel{r: r, w: w}
}

func (c *pipeChannel) Open() error { return nil }

func (c *pipeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *pipeChannel) Read(p []byte) (int, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return 0, ErrChannelClosed
	}
	return io.ReadFull(c.r, p)
}

func (c *pipeChannel) Write(p []byte) (int, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return 0, ErrChannelClosed
	}
	return c.w.Write(p)
}
