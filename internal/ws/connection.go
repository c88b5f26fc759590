package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/torvi/internal/broadcast"
	"github.com/AdamBeresnev/torvi/internal/event"
	"github.com/coder/websocket"
)

var errSubscriptionClosed = errors.New("subscription closed")

// connection is the per-socket loop. Only run writes to the socket; the read
// side lives in its own goroutine because websocket reads block.
type connection struct {
	conn              *websocket.Conn
	sub               *broadcast.Subscription
	heartbeatInterval time.Duration
	logger            *slog.Logger
}

// run multiplexes broadcast deliveries, client messages and the heartbeat
// until one of them ends the connection. The returned error says why.
func (c *connection) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbound := make(chan []byte)
	readErr := make(chan error, 1)
	go c.readLoop(ctx, inbound, readErr)

	heartbeat := time.NewTicker(c.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case delivery, ok := <-c.sub.C():
			if !ok {
				// Close while the read side is still running so the close
				// handshake completes before ctx is cancelled.
				c.conn.Close(websocket.StatusGoingAway, "server shutting down")
				return errSubscriptionClosed
			}
			if delivery.Lagged() {
				c.logger.Warn("subscriber lagged", "missed", delivery.Missed)
			}
			payload, err := event.Encode(delivery.Event)
			if err != nil {
				c.logger.Error("failed to encode event", "error", err)
				continue
			}
			if err := c.write(ctx, payload); err != nil {
				return err
			}

		case data := <-inbound:
			msg, ok := event.ParseClientMessage(data)
			if !ok || !msg.IsPing() {
				continue
			}
			if err := c.write(ctx, event.PongMessage); err != nil {
				return err
			}

		case err := <-readErr:
			return err

		case <-heartbeat.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, c.heartbeatInterval)
			err := c.conn.Ping(pingCtx)
			cancelPing()
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *connection) readLoop(ctx context.Context, inbound chan<- []byte, readErr chan<- error) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			readErr <- err
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		select {
		case inbound <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (c *connection) write(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, payload)
}
