// Package transport owns the live websocket connection to the chat server.
// It is the only place the socket handle lives: callers register one push
// callback at connect time and that callback keeps receiving events across
// reconnects.
package transport

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatka/models"
)

const dialTimeout = 10 * time.Second

// Conn is a client connection to the chat server's websocket endpoint.
type Conn struct {
	url     string
	log     *zap.Logger
	handler func(models.Message)

	mu           sync.Mutex
	ws           *websocket.Conn
	announced    bool
	announceUser string
	closed       bool

	// RetryInterval is the initial redial backoff delay.
	RetryInterval time.Duration
}

// New prepares a connection to the given websocket URL without dialing.
func New(url string, log *zap.Logger) *Conn {
	return &Conn{
		url:           url,
		log:           log,
		RetryInterval: time.Second,
	}
}

// Connect dials the server and registers the push-event callback. The
// callback is registered once; it survives connection drops because the
// read loop redials and keeps delivering to it.
func (c *Conn) Connect(onEvent func(models.Message)) error {
	c.handler = onEvent

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	ws, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.ws = ws
	c.announced = false
	c.mu.Unlock()

	go c.readLoop(ws)
	return nil
}

// Announce sends the bootup frame mapping this connection to username.
// It is idempotent per established connection; after a reconnect the
// transport re-announces on its own.
func (c *Conn) Announce(username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.announceUser = username
	if c.announced {
		return nil
	}
	if c.ws == nil {
		return fmt.Errorf("announce: not connected")
	}
	if err := c.ws.WriteJSON(models.NewBootup(username)); err != nil {
		return fmt.Errorf("announce: %w", err)
	}
	c.announced = true
	return nil
}

// Send transmits an outgoing envelope. Fire-and-forget: no delivery
// acknowledgement is awaited; the message becomes visible when the server
// echoes it back through the push stream.
func (c *Conn) Send(env models.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ws == nil {
		return fmt.Errorf("send: not connected")
	}
	if err := c.ws.WriteJSON(env); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// Close shuts the connection down and stops reconnecting.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.ws == nil {
		return nil
	}
	return c.ws.Close()
}

// readLoop delivers push events until the connection drops, then hands
// over to the redial loop.
func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			c.log.Warn("websocket read failed, reconnecting", zap.Error(err))
			c.redial()
			return
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("skipping malformed push event", zap.Error(err))
			continue
		}
		if msg.From == "" {
			c.log.Warn("skipping push event without sender")
			continue
		}
		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// redial re-establishes the connection with exponential backoff and
// re-announces the mapped user. The callback registered at Connect stays
// bound the whole time.
func (c *Conn) redial() {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // keep trying until Close

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}

	err := backoff.Retry(func() error {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return backoff.Permanent(fmt.Errorf("connection closed"))
		}
		c.mu.Unlock()

		ws, _, err := dialer.Dial(c.url, nil)
		if err != nil {
			c.log.Warn("redial failed", zap.Error(err))
			return err
		}

		c.mu.Lock()
		c.ws = ws
		c.announced = false
		user := c.announceUser
		c.mu.Unlock()

		if user != "" {
			if err := c.Announce(user); err != nil {
				c.log.Warn("re-announce failed", zap.Error(err))
			}
		}

		go c.readLoop(ws)
		return nil
	}, b)

	if err != nil {
		c.log.Warn("redial abandoned", zap.Error(err))
	}
}
