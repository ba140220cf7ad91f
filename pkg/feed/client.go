package feed

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// Client reads snapshots from a feed Server.
type Client struct {
	conn   net.Conn
	reader *FrameReader

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the feed at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("feed: dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		reader: NewFrameReader(conn),
	}, nil
}

// Next blocks until the next snapshot arrives. It returns io.EOF when the
// server hangs up cleanly.
func (c *Client) Next() (Snapshot, error) {
	data, err := c.reader.ReadFrame()
	if err != nil {
		return Snapshot{}, err
	}
	return DecodeSnapshot(data)
}

// SetDeadline bounds subsequent Next calls. A zero t removes the bound.
func (c *Client) SetDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// RemoteAddr returns the server address.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection. Safe to call multiple times.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
