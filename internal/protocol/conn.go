package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// Conn wraps a TCP connection with line-delimited JSON framing.
// Reads happen from a single goroutine; writes are serialized by a mutex
// so broadcasts from other sessions cannot interleave frames.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration

	// now stamps outbound messages; replaceable in tests.
	now func() time.Time
}

// NewConn wraps a raw TCP connection with protocol framing.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

// ReadCommand reads and decodes the next client command.
//
// A malformed line yields a *ProtocolError; the line is consumed and the
// connection remains readable. A zero-length read yields io.EOF, which
// signals a graceful disconnect rather than a failure.
func (c *Conn) ReadCommand() (ClientMessage, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			// Final unterminated line: decode it, then EOF on the next read.
			return c.decode(line)
		}
		return ClientMessage{}, err
	}
	return c.decode(line)
}

func (c *Conn) decode(line string) (ClientMessage, error) {
	line = strings.TrimSpace(line)

	var msg ClientMessage
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return ClientMessage{}, &ProtocolError{Line: line, Err: err}
	}
	return msg, nil
}

// Send encodes one server event as a single line and writes it to the client.
//
// Postcondition: Exactly one newline-terminated JSON frame is written, or
// an error is returned and the frame is not partially visible to Send
// callers on other goroutines.
func (c *Conn) Send(msgType string, data any) error {
	msg := ServerMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: float64(c.now().UnixNano()) / float64(time.Second),
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		return &ProtocolError{Err: err}
	}
	encoded = append(encoded, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err = c.raw.Write(encoded)
	return err
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
