package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrGameNotStarted  = errors.New("game is not started")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellAlreadyOpen = errors.New("cell is already open")
	ErrOutOfBounds     = errors.New("coordinate is out of bounds")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNoPlayers       = errors.New("no connected players in room")
)
