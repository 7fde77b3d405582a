package session

import "github.com/playmines/minesweeper-backend/internal/entity"

// Wire actions for outbound events.
const (
	ActionSessionReady = "session-ready"
	ActionCellResult   = "cell-result"
	ActionTurnChanged  = "turn-changed"
	ActionTurnTime     = "turn-time"
	ActionGameOver     = "game-over"
	ActionError        = "error"
)

// Reasons carried by turn-changed events.
const (
	ReasonMoveMiss   = "moveMiss"
	ReasonMoveHit    = "moveHit"
	ReasonTimeout    = "timeout"
	ReasonPlayerLeft = "playerLeft"
	ReasonGameStart  = "gameStart"
	ReasonJoined     = "joined"
	ReasonReconnect  = "reconnect"
)

// Event is one outbound payload with a fixed shape per action.
type Event interface {
	Action() string
}

// Outbound pairs an event with its destination. An empty To means every
// subscriber of the room; otherwise only the named player receives it.
type Outbound struct {
	To    string
	Event Event
}

func broadcast(event Event) Outbound {
	return Outbound{Event: event}
}

func sendTo(playerID string, event Event) Outbound {
	return Outbound{To: playerID, Event: event}
}

type SessionReadyEvent struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	MineCount       int    `json:"mineCount"`
	MinesFound      int    `json:"minesFound"`
	TurnSeconds     int    `json:"turnSeconds"`
	CurrentPlayerID string `json:"currentPlayerId"`
}

func (SessionReadyEvent) Action() string { return ActionSessionReady }

// OpenedCell is one entry of a cell-result diff.
type OpenedCell struct {
	Row           int  `json:"row"`
	Col           int  `json:"col"`
	IsMine        bool `json:"isMine"`
	AdjacentMines int  `json:"adjacentMineCount"`
}

func openedCells(cells []entity.Cell) []OpenedCell {
	opened := make([]OpenedCell, 0, len(cells))
	for _, cell := range cells {
		opened = append(opened, OpenedCell{
			Row:           cell.Row,
			Col:           cell.Col,
			IsMine:        cell.IsMine,
			AdjacentMines: cell.AdjacentMines,
		})
	}
	return opened
}

type CellResultEvent struct {
	OpenedCells []OpenedCell   `json:"openedCells"`
	Outcome     string         `json:"outcome"`
	MinesFound  int            `json:"minesFound"`
	MinesTotal  int            `json:"minesTotal"`
	Scores      map[string]int `json:"scoresById"`
}

func (CellResultEvent) Action() string { return ActionCellResult }

type TurnChangedEvent struct {
	CurrentPlayerID string `json:"currentPlayerId"`
	Reason          string `json:"reason"`
}

func (TurnChangedEvent) Action() string { return ActionTurnChanged }

type TurnTimeEvent struct {
	CurrentPlayerID  string `json:"currentPlayerId"`
	SecondsRemaining int    `json:"secondsRemaining"`
}

func (TurnTimeEvent) Action() string { return ActionTurnTime }

type Winner struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

type GameOverEvent struct {
	Winners []Winner       `json:"winners"`
	Scores  map[string]int `json:"scoresById"`
}

func (GameOverEvent) Action() string { return ActionGameOver }

type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) Action() string { return ActionError }
