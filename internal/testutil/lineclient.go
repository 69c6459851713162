// Package testutil provides a line-protocol test client for integration
// testing the Vocly server over a real TCP connection.
package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"
)

// Event is one decoded server→client message.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
}

// Client is a minimal protocol client for tests.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
}

// Dial connects to the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected Client or fails the test.
func Dial(t *testing.T, addr string) *Client {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		t:      t,
	}
}

// Send writes one command line to the server.
//
// Postcondition: A single newline-terminated JSON frame is written, or the
// test fails.
func (c *Client) Send(command string, data any) {
	c.t.Helper()

	msg := map[string]any{"command": command}
	if data != nil {
		msg["data"] = data
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("encoding command %q: %v", command, err)
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\n", encoded); err != nil {
		c.t.Fatalf("sending %q: %v", command, err)
	}
}

// SendRaw writes one raw line to the server, for protocol error tests.
func (c *Client) SendRaw(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		c.t.Fatalf("sending raw line: %v", err)
	}
}

// ReadEvent reads and decodes the next server event.
//
// Postcondition: Returns the decoded event or fails the test on timeout,
// disconnect, or a malformed frame.
func (c *Client) ReadEvent(timeout time.Duration) Event {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := c.reader.ReadString('\n')
	if err != nil {
		c.t.Fatalf("reading event: %v (partial: %q)", err, line)
	}

	var ev Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		c.t.Fatalf("decoding event %q: %v", line, err)
	}
	return ev
}

// Expect reads the next event and fails the test unless it has the given
// type. The decoded data is unmarshalled into out when out is non-nil.
func (c *Client) Expect(eventType string, timeout time.Duration, out any) Event {
	c.t.Helper()

	ev := c.ReadEvent(timeout)
	if ev.Type != eventType {
		c.t.Fatalf("expected event %q, got %q (data: %s)", eventType, ev.Type, ev.Data)
	}
	if out != nil {
		if err := json.Unmarshal(ev.Data, out); err != nil {
			c.t.Fatalf("decoding %q data %s: %v", eventType, ev.Data, err)
		}
	}
	return ev
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.conn.Close()
}
