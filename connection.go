package memento

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/kafkiansky/memento/protocol"
)

var (
	ErrConnectionClosed = errors.New("memento: connection closed")
)

// Connection owns a single socket to one memcache server and drives one
// command to completion at a time: write the encoded request, read the
// matching response, only then accept the next request. The text protocol
// carries no request identifiers, so interleaving would make responses
// unattributable; the full cycle is serialized under a mutex. Callers
// wanting concurrency open additional connections.
type Connection struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	closed bool
}

// Dial connects to a memcache server at addr.
func Dial(ctx context.Context, addr string) (*Connection, error) {
	return DialWithDialer(ctx, addr, &net.Dialer{})
}

// DialWithDialer connects using a caller-provided dialer.
func DialWithDialer(ctx context.Context, addr string, dialer *net.Dialer) (*Connection, error) {
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &protocol.ConnectionError{Op: "connect", Err: err}
	}
	return NewConnection(conn), nil
}

// NewConnection wraps an established socket.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		addr:   conn.RemoteAddr().String(),
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// Execute runs one full request/response cycle for cmd.
//
// Validation failures are returned before any byte touches the socket and
// leave the connection usable. A write failure, a read failure, a framing
// failure, or an abandoned read (context deadline fired mid-response) all
// leave the byte stream in an unknown position, so any of them closes the
// connection; subsequent calls fail with ErrConnectionClosed.
//
// No timeout is imposed here: the context deadline, if any, is projected
// onto the socket.
func (c *Connection) Execute(ctx context.Context, cmd *protocol.Command) (*protocol.Response, error) {
	payload, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	if _, err := c.conn.Write(payload); err != nil {
		c.teardown()
		return nil, &protocol.ConnectionError{Op: "write", Err: err}
	}

	if cmd.Name == protocol.CmdQuit {
		// The server closes its side without replying; close ours too.
		c.teardown()
		return &protocol.Response{Type: protocol.RespNoResponse}, nil
	}

	resp, err := protocol.ReadResponse(c.reader, cmd)
	if err != nil {
		c.teardown()
		var parseErr *protocol.ParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}
		return nil, &protocol.ConnectionError{Op: "read", Err: err}
	}

	// Server error lines that corrupt framing (CLIENT_ERROR, ERROR) poison
	// the connection; SERVER_ERROR was fully framed and leaves it usable.
	if resp.HasError() && protocol.ShouldCloseConnection(resp.Error) {
		c.teardown()
	}

	return resp, nil
}

// teardown marks the connection closed and releases the socket.
// Must be called with the lock held.
func (c *Connection) teardown() {
	c.closed = true
	c.conn.Close()
}

// IsClosed reports whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Addr returns the server address.
func (c *Connection) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.conn.Close()
}
