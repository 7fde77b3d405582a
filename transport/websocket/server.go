package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/playmines/minesweeper-backend/internal/pkg"
	"github.com/playmines/minesweeper-backend/internal/registry"
	"github.com/playmines/minesweeper-backend/internal/session"
)

type gameRegistry interface {
	Join(roomID string, conn registry.Conn, name string)
	Leave(roomID, playerID string) error
	StartGame(roomID string, params session.StartParams) error
	SubmitMove(roomID, playerID string, row, col int) error
}

type Server struct {
	logger   *slog.Logger
	registry gameRegistry
	upgrader websocket.Upgrader

	handlers map[string]func(c *client, payload json.RawMessage) error
}

func New(logger *slog.Logger, gameRegistry gameRegistry) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		registry: gameRegistry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(*client, json.RawMessage) error),
	}

	server.handlers["room:join"] = server.handleRoomJoin
	server.handlers["room:leave"] = server.handleRoomLeave
	server.handlers["game:start"] = server.handleGameStart
	server.handlers["game:move"] = server.handleGameMove

	return server
}

// Start - starts the WebSocket server and shuts it down with the context.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleUpgrade)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleUpgrade(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleUpgrade")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	playerID := req.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = pkg.GeneratePlayerID()
	}

	c := newClient(that.logger, conn, playerID)
	c.name = req.URL.Query().Get("name")

	go c.writePump()

	log.Info("connection established", "playerID", playerID)

	that.readPump(c)
}

// readPump consumes inbound messages until the connection drops, then maps
// the close to a room leave.
func (that *Server) readPump(c *client) {
	log := that.logger.With("method", "readPump", "playerID", c.playerID)

	defer func() {
		if c.roomID != "" {
			if err := that.registry.Leave(c.roomID, c.playerID); err != nil {
				log.Error("failed to leave room", "error", err)
			}
		}

		c.close()
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(c, "unknown action: "+message.Action)
			continue
		}

		if err = handler(c, message.Payload); err != nil {
			log.Error("failed to process message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) sendError(c *client, message string) {
	if err := c.Send(session.ErrorEvent{Message: message}); err != nil {
		that.logger.Error("failed to send error event", "playerID", c.playerID, "error", err)
	}
}
