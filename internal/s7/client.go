package s7

import (
	"fmt"
	"sync"
	"time"

	"github.com/robinson/gos7"
)

// Client talks to a Siemens S7 PLC over ISO-on-TCP using gos7. It satisfies
// MemoryPort for data block reads and writes.
type Client struct {
	address string
	rack    int
	slot    int
	timeout time.Duration

	mu        sync.Mutex
	handler   *gos7.TCPClientHandler
	client    gos7.Client
	connected bool
}

// NewClient prepares a client for the PLC at address ("host:102"), rack and
// slot. No connection is made until Connect.
func NewClient(address string, rack, slot int, timeout time.Duration) *Client {
	return &Client{
		address: address,
		rack:    rack,
		slot:    slot,
		timeout: timeout,
	}
}

// Connect establishes the ISO-on-TCP session.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	handler := gos7.NewTCPClientHandler(c.address, c.rack, c.slot)
	if c.timeout > 0 {
		handler.Timeout = c.timeout
	}

	if err := handler.Connect(); err != nil {
		return fmt.Errorf("connection to %s failed: %w", c.address, err)
	}

	c.handler = handler
	c.client = gos7.NewClient(handler)
	c.connected = true

	return nil
}

// Disconnect releases the session. Safe to call when already disconnected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	err := c.handler.Close()
	c.handler = nil
	c.client = nil
	c.connected = false

	return err
}

// ReadDB reads size bytes from data block dbNumber at byte offset start.
func (c *Client) ReadDB(dbNumber, start, size int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected")
	}

	buf := make([]byte, size)
	if err := c.client.AGReadDB(dbNumber, start, size, buf); err != nil {
		return nil, fmt.Errorf("read DB%d@%d failed: %w", dbNumber, start, err)
	}
	return buf, nil
}

// WriteDB writes data into data block dbNumber at byte offset start.
func (c *Client) WriteDB(dbNumber, start int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	if err := c.client.AGWriteDB(dbNumber, start, len(data), data); err != nil {
		return fmt.Errorf("write DB%d@%d failed: %w", dbNumber, start, err)
	}
	return nil
}
