package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/playmines/minesweeper-backend/internal/pkg"
	"github.com/playmines/minesweeper-backend/internal/session"
)

const actionRoomJoined = "room:joined"

func sessionParams(req StartPayload) session.StartParams {
	return session.StartParams{
		Width:       req.Width,
		Height:      req.Height,
		MineCount:   req.MineCount,
		TurnSeconds: req.TurnSeconds,
	}
}

func (that *Server) handleRoomJoin(c *client, payload json.RawMessage) error {
	log := that.logger.With("method", "handleRoomJoin", "playerID", c.playerID)

	var req JoinPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	if c.roomID != "" {
		that.sendError(c, "already in a room")
		return nil
	}

	// A client that remembers its id keeps it across reconnects.
	if req.Player.ID != "" {
		c.playerID = req.Player.ID
	}
	if req.Player.Name != "" {
		c.name = req.Player.Name
	}

	roomID := req.Room.ID
	if roomID == "" {
		roomID = pkg.GenerateRoomID()
	}

	c.roomID = roomID
	that.registry.Join(roomID, c, c.name)

	var resp JoinedPayload
	resp.Room.ID = roomID
	resp.Player.ID = c.playerID
	resp.Player.Name = c.name

	if err := c.sendMessage(actionRoomJoined, resp); err != nil {
		return fmt.Errorf("failed to send join response: %w", err)
	}

	log.Info("player joined room", "roomID", roomID)

	return nil
}

func (that *Server) handleRoomLeave(c *client, _ json.RawMessage) error {
	log := that.logger.With("method", "handleRoomLeave", "playerID", c.playerID)

	if c.roomID == "" {
		that.sendError(c, "not in a room")
		return nil
	}

	if err := that.registry.Leave(c.roomID, c.playerID); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	log.Info("player left room", "roomID", c.roomID)
	c.roomID = ""

	return nil
}

func (that *Server) handleGameStart(c *client, payload json.RawMessage) error {
	var req StartPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	if c.roomID == "" {
		that.sendError(c, "not in a room")
		return nil
	}

	err := that.registry.StartGame(c.roomID, sessionParams(req))
	if err != nil {
		that.sendError(c, "failed to start game")
		return fmt.Errorf("failed to start game: %w", err)
	}

	return nil
}

func (that *Server) handleGameMove(c *client, payload json.RawMessage) error {
	var req MovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if c.roomID == "" {
		that.sendError(c, "not in a room")
		return nil
	}

	if err := that.registry.SubmitMove(c.roomID, c.playerID, req.Row, req.Col); err != nil {
		that.sendError(c, "failed to submit move")
		return fmt.Errorf("failed to submit move: %w", err)
	}

	return nil
}
