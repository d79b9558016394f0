package memento

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/kafkiansky/memento/protocol"
)

// NoTTL represents an infinite TTL (no expiration).
const NoTTL = 0

// Config holds configuration for the memcache client.
type Config struct {
	// DialTimeout bounds connection establishment. Zero means no limit.
	DialTimeout time.Duration

	// Dialer is the net.Dialer used to create the connection.
	// If nil, a default net.Dialer with DialTimeout is used.
	Dialer *net.Dialer

	// MaxValueSize rejects oversized payloads before any byte is written.
	// Zero means the protocol default of 1 MiB.
	MaxValueSize int

	// CircuitBreaker optionally wraps every request/response cycle.
	// An open breaker fails fast; nothing is ever retried.
	CircuitBreaker CircuitBreaker
}

// Client is the public facade: one method per memcache command, executed
// over a single connection. Commands run strictly sequentially; open one
// client per unit of concurrency.
type Client struct {
	conn   *Connection
	config Config
	stats  *clientStatsCollector
}

var _ Querier = (*Client)(nil)

// Connect dials addr and returns a ready client.
func Connect(ctx context.Context, addr string, config Config) (*Client, error) {
	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: config.DialTimeout}
	}

	conn, err := DialWithDialer(ctx, addr, dialer)
	if err != nil {
		return nil, err
	}

	return NewClient(conn, config), nil
}

// NewClient wraps an established connection.
func NewClient(conn *Connection, config Config) *Client {
	if config.MaxValueSize == 0 {
		config.MaxValueSize = protocol.MaxValueLength
	}

	return &Client{
		conn:   conn,
		config: config,
		stats:  newClientStatsCollector(),
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Set stores an item unconditionally.
func (c *Client) Set(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewSet(key, item))
}

// Add stores an item only if the key is absent; an existing key answers
// NOT_STORED.
func (c *Client) Add(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewAdd(key, item))
}

// Replace stores an item only if the key already exists.
func (c *Client) Replace(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewReplace(key, item))
}

// Append concatenates the item's data after the existing value.
func (c *Client) Append(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewAppend(key, item))
}

// Prepend concatenates the item's data before the existing value.
func (c *Client) Prepend(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewPrepend(key, item))
}

// Cas stores an item only if its CAS token, issued by a previous Gets,
// still matches the server's; a concurrent modification answers EXISTS.
func (c *Client) Cas(ctx context.Context, key protocol.Key, item protocol.Item) (*protocol.Response, error) {
	return c.store(ctx, protocol.NewCas(key, item))
}

func (c *Client) store(ctx context.Context, cmd *protocol.Command) (*protocol.Response, error) {
	if len(cmd.Item.Data) > c.config.MaxValueSize {
		c.stats.recordError()
		return nil, &protocol.InvalidItemError{
			Message: "value exceeds maximum size of " + strconv.Itoa(c.config.MaxValueSize) + " bytes",
		}
	}

	resp, err := c.exec(ctx, cmd)
	if err != nil {
		return nil, err
	}

	c.stats.recordStore()
	return resp, nil
}

// Get fetches one key. A hit yields RespValue with a single entry; a miss
// yields RespNotFound.
func (c *Client) Get(ctx context.Context, key protocol.Key) (*protocol.Response, error) {
	resp, err := c.exec(ctx, protocol.NewGet(key))
	if err != nil {
		return nil, err
	}

	c.stats.recordGet(resp.Type == protocol.RespValue)
	return resp, nil
}

// Gets fetches one or more keys; every returned entry carries a
// server-issued CAS token. Only keys the server had appear in the result,
// in server emission order; misses are simply absent.
func (c *Client) Gets(ctx context.Context, keys ...protocol.Key) (*protocol.Response, error) {
	if len(keys) == 0 {
		c.stats.recordError()
		return nil, &protocol.InvalidKeyError{Message: "gets requires at least one key"}
	}

	resp, err := c.exec(ctx, protocol.NewGets(keys...))
	if err != nil {
		return nil, err
	}

	c.stats.recordGet(len(resp.Entries) > 0)
	return resp, nil
}

// Incr increments the numeric value stored at key by delta. A missing key
// answers NOT_FOUND; a non-numeric value is reported by the server as
// CLIENT_ERROR.
func (c *Client) Incr(ctx context.Context, key protocol.Key, delta uint64) (*protocol.Response, error) {
	resp, err := c.exec(ctx, protocol.NewIncr(key, delta))
	if err != nil {
		return nil, err
	}

	c.stats.recordIncrement()
	return resp, nil
}

// Decr decrements the numeric value stored at key by delta.
// The server clamps results below zero to 0.
func (c *Client) Decr(ctx context.Context, key protocol.Key, delta uint64) (*protocol.Response, error) {
	resp, err := c.exec(ctx, protocol.NewDecr(key, delta))
	if err != nil {
		return nil, err
	}

	c.stats.recordDecrement()
	return resp, nil
}

// Delete removes a key. A missing key answers NOT_FOUND.
func (c *Client) Delete(ctx context.Context, key protocol.Key) (*protocol.Response, error) {
	resp, err := c.exec(ctx, protocol.NewDelete(key))
	if err != nil {
		return nil, err
	}

	c.stats.recordDelete()
	return resp, nil
}

// Version asks for the server version string.
func (c *Client) Version(ctx context.Context) (*protocol.Response, error) {
	return c.exec(ctx, protocol.NewVersion())
}

// Stats fetches server statistics, decoded into typed Stat values.
func (c *Client) Stats(ctx context.Context) (*protocol.Response, error) {
	return c.exec(ctx, protocol.NewStats())
}

// Quit tells the server to close the connection. No reply is read; the
// connection is closed locally and further calls fail with
// ErrConnectionClosed.
func (c *Client) Quit(ctx context.Context) (*protocol.Response, error) {
	return c.exec(ctx, protocol.NewQuit())
}

// ClientStats returns a snapshot of the client's operation counters.
func (c *Client) ClientStats() ClientStats {
	return c.stats.snapshot()
}

// exec runs one command through the optional circuit breaker and converts
// server-reported error lines into call errors. Application outcomes
// (NOT_STORED, NOT_FOUND, ...) pass through as responses.
func (c *Client) exec(ctx context.Context, cmd *protocol.Command) (*protocol.Response, error) {
	var resp *protocol.Response
	var err error

	if c.config.CircuitBreaker != nil {
		resp, err = c.config.CircuitBreaker.Execute(func() (*protocol.Response, error) {
			return c.conn.Execute(ctx, cmd)
		})
	} else {
		resp, err = c.conn.Execute(ctx, cmd)
	}

	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	if resp.HasError() {
		c.stats.recordError()
		return nil, resp.Error
	}

	return resp, nil
}
