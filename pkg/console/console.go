// Package console adapts a TCP connection into the io.ByteReader and
// io.ByteWriter a Machine needs for IN/OUT. It exists so that guest
// programs can talk to a real terminal session instead of files wired up
// ahead of time, the same role a serial TTY plays for a physical board.
package console

import (
	"bufio"
	"fmt"
	"log"
	"net"
)

// Console is a TCP-backed byte source and sink. IN blocks on ReadByte
// until a byte arrives or the connection closes; OUT's WriteByte only
// buffers the byte. Flush is implemented so the interpreter loop can
// drain buffered output before reporting Halt.
type Console struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// Listen waits for a single controlling TCP connection on addr (e.g.
// "127.0.0.1:0" to pick an ephemeral port) and returns a Console wrapping
// it once a client attaches.
func Listen(addr string) (*Console, error) {
	nl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("console: listen: %w", err)
	}
	defer nl.Close()
	log.Printf("console: waiting for a client to attach on %s...", nl.Addr())
	conn, err := nl.Accept()
	if err != nil {
		return nil, fmt.Errorf("console: accept: %w", err)
	}
	return &Console{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}, nil
}

// ReadByte implements io.ByteReader by reading one byte from the
// connection.
func (c *Console) ReadByte() (byte, error) {
	return c.r.ReadByte()
}

// WriteByte implements io.ByteWriter by buffering one byte for the
// connection; call Flush (or let Run do it) before relying on the peer
// having seen it.
func (c *Console) WriteByte(b byte) error {
	return c.w.WriteByte(b)
}

// Flush drains buffered output to the connection. Machine.Run calls this
// automatically once the interpreter loop reaches a terminal state; it
// satisfies the unexported flusher interface in pkg/vm.
func (c *Console) Flush() error {
	return c.w.Flush()
}

// Close closes the underlying connection.
func (c *Console) Close() error {
	return c.conn.Close()
}
