package events

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
)

const (
	sendBuffer   = 16
	readLimit    = 4096
	pongDeadline = 90 * time.Second
)

// client is one websocket subscriber. writePump is the only writer of data frames;
// pings go through WriteControl, which gorilla allows concurrently.
type client struct {
	identity     models.Identity
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	once         sync.Once
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(*client)
}

func newClient(identity models.Identity, conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(*client)) *client {
	return &client{
		identity:     identity,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

// readPump drains inbound frames so pongs and close frames are processed.
func (c *client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logger.Debug("session feed read closed", zap.String("user", c.identity.Username), zap.Error(err))
			return
		}
	}
}

func (c *client) writePump() {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("session feed write failed", zap.String("user", c.identity.Username), zap.Error(err))
				return
			}
		}
	}
}

func (c *client) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("dropping session event, buffer full", zap.String("user", c.identity.Username))
	}
}

func (c *client) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout))
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}
