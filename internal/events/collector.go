package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const defaultMaxPayloadBytes = 64 * 1024

// Collector feeds the update queue from a unix datagram socket. The drafting
// process (or anything else) writes one JSON event per datagram. Malformed or
// oversized payloads are dropped with a warning; they never stop the reader.
type Collector struct {
	queue  *Queue
	path   string
	logger *zap.Logger

	MaxPayloadBytes int

	mu     sync.Mutex
	conn   *net.UnixConn
	closed bool
}

func NewCollector(queue *Queue, socketPath string, logger *zap.Logger) *Collector {
	return &Collector{
		queue:           queue,
		path:            socketPath,
		logger:          logger,
		MaxPayloadBytes: defaultMaxPayloadBytes,
	}
}

func (c *Collector) SocketPath() string {
	return c.path
}

func (c *Collector) Start(ctx context.Context) error {
	if c.queue == nil {
		return fmt.Errorf("queue is required")
	}
	if c.path == "" {
		return fmt.Errorf("socket path is required")
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = defaultMaxPayloadBytes
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", c.path)
	if err != nil {
		return fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return fmt.Errorf("listen unixgram: %w", err)
	}
	if err := os.Chmod(c.path, 0o600); err != nil {
		_ = conn.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.close()
	}()

	go c.readLoop()

	return nil
}

func (c *Collector) readLoop() {
	buf := make([]byte, c.MaxPayloadBytes)
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		n, _, err := conn.ReadFromUnix(buf)
		if err != nil {
			if c.isClosed() {
				return
			}
			continue
		}

		if n <= 0 || n >= c.MaxPayloadBytes {
			c.logger.Warn("dropping event datagram with bad size", zap.Int("bytes", n))
			continue
		}

		var e Event
		if err := json.Unmarshal(buf[:n], &e); err != nil {
			c.logger.Warn("dropping undecodable event datagram", zap.Error(err))
			continue
		}
		if err := e.Validate(); err != nil {
			c.logger.Warn("dropping invalid event", zap.String("kind", e.Kind), zap.Error(err))
			continue
		}
		if !c.queue.TryEnqueue(e) {
			c.logger.Warn("update queue full, dropping event",
				zap.String("kind", e.Kind),
				zap.String("payload", e.Payload))
		}
	}
}

func (c *Collector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Collector) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
