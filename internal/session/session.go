package session

import (
	"math/rand"

	"github.com/playmines/minesweeper-backend/internal/apperror"
	"github.com/playmines/minesweeper-backend/internal/entity"
	"github.com/playmines/minesweeper-backend/internal/minefield"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInProgress
	PhaseOver
)

func (that Phase) String() string {
	switch that {
	case PhaseIdle:
		return "idle"
	case PhaseInProgress:
		return "inProgress"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// StartParams are the settings of one game round.
type StartParams struct {
	Width       int
	Height      int
	MineCount   int
	TurnSeconds int
}

// Session is the live game state of one room: grid, roster, turn pointer and
// timer countdown. It is a plain synchronous state machine; every operation
// applies its mutation and returns the events to deliver. The Coordinator is
// the only caller, so no locking happens here.
type Session struct {
	rng *rand.Rand

	grid        *entity.Grid
	players     []*entity.Player
	phase       Phase
	turnIndex   int
	turnSeconds int
	remaining   int
	generation  uint64
}

func NewSession(rng *rand.Rand) *Session {
	return &Session{rng: rng}
}

func (that *Session) Phase() Phase { return that.phase }

func (that *Session) Grid() *entity.Grid { return that.grid }

func (that *Session) Players() []*entity.Player { return that.players }

// Generation increments every time the grid is replaced or discarded. Timer
// ticks armed for an older generation must not be applied.
func (that *Session) Generation() uint64 { return that.generation }

// TimerArmed reports whether a turn countdown is currently running.
func (that *Session) TimerArmed() bool {
	return that.phase == PhaseInProgress && that.turnSeconds > 0
}

func (that *Session) CurrentPlayerID() string {
	if that.phase != PhaseInProgress || len(that.players) == 0 {
		return ""
	}
	return that.players[that.turnIndex].ID
}

// Start launches a fresh round. Calling it mid-game discards the current
// grid and scores first; a host aborting and relaunching wins over the round
// in flight. The starting turn is drawn uniformly among connected players.
func (that *Session) Start(params StartParams) []Outbound {
	connected := make([]int, 0, len(that.players))
	for i, player := range that.players {
		if player.Connected {
			connected = append(connected, i)
		}
	}

	if len(connected) == 0 {
		return []Outbound{broadcast(ErrorEvent{Message: apperror.ErrNoPlayers.Error()})}
	}

	that.grid = minefield.Generate(that.rng, params.Width, params.Height, params.MineCount)
	that.generation++
	that.turnSeconds = params.TurnSeconds
	that.remaining = params.TurnSeconds
	that.turnIndex = connected[that.rng.Intn(len(connected))]
	that.phase = PhaseInProgress

	for _, player := range that.players {
		player.Score = 0
	}

	return []Outbound{
		broadcast(that.sessionReady()),
		broadcast(TurnChangedEvent{CurrentPlayerID: that.CurrentPlayerID(), Reason: ReasonGameStart}),
	}
}

// Move opens one cell on behalf of playerID. Rejections (wrong turn, out of
// bounds, already open) go back to the sender only and never consume the
// turn; a hit or a clear consumes it. The grid, score and turn pointer
// mutate together or not at all.
func (that *Session) Move(playerID string, row, col int) []Outbound {
	if that.phase == PhaseOver {
		return []Outbound{sendTo(playerID, ErrorEvent{Message: apperror.ErrGameFinished.Error()})}
	}

	if that.phase != PhaseInProgress {
		return []Outbound{sendTo(playerID, ErrorEvent{Message: apperror.ErrGameNotStarted.Error()})}
	}

	if that.CurrentPlayerID() != playerID {
		return []Outbound{sendTo(playerID, ErrorEvent{Message: apperror.ErrNotYourTurn.Error()})}
	}

	result := minefield.Open(that.grid, row, col)

	switch result.Outcome {
	case minefield.Outside:
		return []Outbound{sendTo(playerID, ErrorEvent{Message: apperror.ErrOutOfBounds.Error()})}
	case minefield.AlreadyOpen:
		return []Outbound{sendTo(playerID, ErrorEvent{Message: apperror.ErrCellAlreadyOpen.Error()})}
	}

	reason := ReasonMoveMiss
	if result.Outcome == minefield.HitMine {
		reason = ReasonMoveHit
		that.players[that.turnIndex].Score++
	}

	events := []Outbound{broadcast(CellResultEvent{
		OpenedCells: openedCells(result.Opened),
		Outcome:     result.Outcome.String(),
		MinesFound:  that.grid.OpenedMines,
		MinesTotal:  that.grid.MineCount,
		Scores:      that.scores(),
	})}

	if that.grid.OpenedMines >= that.grid.MineCount {
		that.phase = PhaseOver
		that.remaining = 0

		return append(events, broadcast(GameOverEvent{
			Winners: that.winners(),
			Scores:  that.scores(),
		}))
	}

	return append(events, that.advanceTurn(reason)...)
}

// Tick consumes one second of the current turn. The final tick reports zero
// remaining and passes the turn with a timeout reason; no score changes.
func (that *Session) Tick() []Outbound {
	if !that.TimerArmed() {
		return nil
	}

	that.remaining--

	events := []Outbound{broadcast(TurnTimeEvent{
		CurrentPlayerID:  that.CurrentPlayerID(),
		SecondsRemaining: that.remaining,
	})}

	if that.remaining > 0 {
		return events
	}

	return append(events, that.advanceTurn(ReasonTimeout)...)
}

// Join adds a player to the end of the rotation, or marks a known player
// connected again. Whose turn it is never changes. Mid-game joiners get the
// session state so they can render the live round.
func (that *Session) Join(playerID, name string) []Outbound {
	reason := ReasonJoined

	existing := that.find(playerID)
	if existing != nil {
		existing.Connected = true
		if name != "" {
			existing.Name = name
		}
		reason = ReasonReconnect
	} else {
		that.players = append(that.players, &entity.Player{
			ID:        playerID,
			Name:      name,
			Connected: true,
		})
	}

	if that.phase != PhaseInProgress {
		return nil
	}

	return []Outbound{
		sendTo(playerID, that.sessionReady()),
		broadcast(TurnChangedEvent{CurrentPlayerID: that.CurrentPlayerID(), Reason: reason}),
	}
}

// Leave removes a player and compacts the rotation. Losing the current turn
// holder passes the turn immediately; losing the last player abandons the
// round and the session goes back to idle without a winner.
func (that *Session) Leave(playerID string) []Outbound {
	index := -1
	for i, player := range that.players {
		if player.ID == playerID {
			index = i
			break
		}
	}

	if index == -1 {
		return nil
	}

	that.players = append(that.players[:index], that.players[index+1:]...)

	if len(that.players) == 0 {
		that.reset()
		return nil
	}

	if that.phase != PhaseInProgress {
		return nil
	}

	hadTurn := index == that.turnIndex

	if index < that.turnIndex {
		that.turnIndex--
	}
	that.turnIndex %= len(that.players)

	if !hadTurn {
		return nil
	}

	// The compacted slice already put the next player under the pointer.
	that.remaining = that.turnSeconds

	return []Outbound{broadcast(TurnChangedEvent{
		CurrentPlayerID: that.CurrentPlayerID(),
		Reason:          ReasonPlayerLeft,
	})}
}

// Snapshot is the durable view handed to the persistence bridge.
func (that *Session) Snapshot() entity.RoomSnapshot {
	snapshot := entity.RoomSnapshot{
		TurnSeconds: that.turnSeconds,
		PlayerIDs:   make([]string, 0, len(that.players)),
	}

	if that.grid != nil {
		snapshot.Width = that.grid.Width
		snapshot.Height = that.grid.Height
		snapshot.MineCount = that.grid.MineCount
	}

	for _, player := range that.players {
		snapshot.PlayerIDs = append(snapshot.PlayerIDs, player.ID)
	}

	return snapshot
}

func (that *Session) advanceTurn(reason string) []Outbound {
	if len(that.players) == 0 {
		that.reset()
		return nil
	}

	that.turnIndex = (that.turnIndex + 1) % len(that.players)
	that.remaining = that.turnSeconds

	return []Outbound{broadcast(TurnChangedEvent{
		CurrentPlayerID: that.CurrentPlayerID(),
		Reason:          reason,
	})}
}

func (that *Session) reset() {
	that.grid = nil
	that.generation++
	that.phase = PhaseIdle
	that.turnIndex = 0
	that.remaining = 0
}

func (that *Session) sessionReady() SessionReadyEvent {
	return SessionReadyEvent{
		Width:           that.grid.Width,
		Height:          that.grid.Height,
		MineCount:       that.grid.MineCount,
		MinesFound:      that.grid.OpenedMines,
		TurnSeconds:     that.turnSeconds,
		CurrentPlayerID: that.CurrentPlayerID(),
	}
}

func (that *Session) scores() map[string]int {
	scores := make(map[string]int, len(that.players))
	for _, player := range that.players {
		scores[player.ID] = player.Score
	}
	return scores
}

// winners lists every player holding the maximum score, in join order.
func (that *Session) winners() []Winner {
	maxScore := 0
	for _, player := range that.players {
		if player.Score > maxScore {
			maxScore = player.Score
		}
	}

	var winners []Winner
	for _, player := range that.players {
		if player.Score == maxScore {
			winners = append(winners, Winner{PlayerID: player.ID, Score: player.Score})
		}
	}

	return winners
}

func (that *Session) find(playerID string) *entity.Player {
	for _, player := range that.players {
		if player.ID == playerID {
			return player
		}
	}
	return nil
}
