package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playmines/minesweeper-backend/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 256
)

var ErrSlowConsumer = errors.New("send buffer full, dropping connection")

// client is one upgraded connection. It implements registry.Conn: the
// registry pushes session events through Send, the write pump drains them.
type client struct {
	logger   *slog.Logger
	conn     *websocket.Conn
	playerID string
	name     string
	roomID   string

	send      chan []byte
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn, playerID string) *client {
	return &client{
		logger:   logger.With("playerID", playerID),
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (that *client) PlayerID() string {
	return that.playerID
}

// Send queues an event for the write pump. A full buffer means the client
// stopped draining; the event is dropped rather than blocking the room loop.
func (that *client) Send(event session.Event) error {
	return that.sendMessage(event.Action(), event)
}

func (that *client) sendMessage(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case that.send <- data:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.send)
	})
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with periodic pings.
func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
