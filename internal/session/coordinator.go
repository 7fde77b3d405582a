package session

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/playmines/minesweeper-backend/internal/entity"
)

// Sink receives the events a coordinator produces. Broadcast goes to every
// subscriber of the room, SendTo to a single player.
type Sink interface {
	Broadcast(event Event)
	SendTo(playerID string, event Event)
}

// Hooks let the owner react to roster and settings changes without the
// coordinator knowing about persistence or the room table.
type Hooks struct {
	// OnChange fires after the roster or game settings changed. Implementations
	// must not block: a turn never waits on persistence.
	OnChange func(snapshot entity.RoomSnapshot)
	// OnEmpty fires when the last player left the room.
	OnEmpty func()
}

// Coordinator owns one room's session. All mutations funnel through a single
// goroutine consuming a command queue, so player actions and timer ticks for
// the same room never interleave. Different rooms run independent loops.
type Coordinator struct {
	logger  *slog.Logger
	session *Session
	sink    Sink
	hooks   Hooks

	cmds     chan func()
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	ticker  *time.Ticker
	tickC   <-chan time.Time
	tickGen uint64
}

func NewCoordinator(logger *slog.Logger, rng *rand.Rand, sink Sink, hooks Hooks) *Coordinator {
	return &Coordinator{
		logger:  logger.With("component", "coordinator"),
		session: NewSession(rng),
		sink:    sink,
		hooks:   hooks,

		cmds:    make(chan func(), 32),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run consumes commands and timer ticks until the context is canceled or
// Stop is called. It must run in its own goroutine.
func (that *Coordinator) Run(ctx context.Context) {
	defer close(that.stopped)
	defer that.stopTicker()

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("room loop canceled")
			return
		case <-that.done:
			that.logger.Info("room loop stopped")
			return
		case fn := <-that.cmds:
			fn()
			that.syncTimer()
		case <-that.tickC:
			// A tick buffered before a restart must not count against the
			// new grid.
			if that.tickGen != that.session.Generation() {
				that.syncTimer()
				continue
			}

			that.deliver(that.session.Tick())
			that.syncTimer()
		}
	}
}

// Stop terminates the room loop. Safe to call more than once.
func (that *Coordinator) Stop() {
	that.stopOnce.Do(func() {
		close(that.done)
	})
}

// StartGame launches a fresh round, discarding any round in flight.
func (that *Coordinator) StartGame(params StartParams) {
	that.enqueue(func() {
		that.deliver(that.session.Start(params))
		that.notifyChange()
	})
}

// SubmitMove opens one cell on behalf of the player.
func (that *Coordinator) SubmitMove(playerID string, row, col int) {
	that.enqueue(func() {
		that.deliver(that.session.Move(playerID, row, col))
	})
}

// PlayerConnected adds the player to the rotation, or revives a known one.
func (that *Coordinator) PlayerConnected(playerID, name string) {
	that.enqueue(func() {
		that.deliver(that.session.Join(playerID, name))
		that.notifyChange()
	})
}

// PlayerDisconnected drops the player from the rotation.
func (that *Coordinator) PlayerDisconnected(playerID string) {
	that.enqueue(func() {
		that.deliver(that.session.Leave(playerID))

		if len(that.session.Players()) == 0 {
			if that.hooks.OnEmpty != nil {
				that.hooks.OnEmpty()
			}
			return
		}

		that.notifyChange()
	})
}

func (that *Coordinator) enqueue(fn func()) {
	select {
	case that.cmds <- fn:
	case <-that.done:
	case <-that.stopped:
	}
}

func (that *Coordinator) deliver(events []Outbound) {
	for _, out := range events {
		if out.To == "" {
			that.sink.Broadcast(out.Event)
			continue
		}

		that.sink.SendTo(out.To, out.Event)
	}
}

// syncTimer keeps the ticker in step with the session: running exactly while
// a turn countdown is armed, and tagged with the grid generation it was
// armed for.
func (that *Coordinator) syncTimer() {
	armed := that.session.TimerArmed()

	if armed && that.ticker != nil && that.tickGen == that.session.Generation() {
		return
	}

	that.stopTicker()

	if armed {
		that.ticker = time.NewTicker(time.Second)
		that.tickC = that.ticker.C
		that.tickGen = that.session.Generation()
	}
}

func (that *Coordinator) stopTicker() {
	if that.ticker == nil {
		return
	}

	that.ticker.Stop()
	that.ticker = nil
	that.tickC = nil
}

func (that *Coordinator) notifyChange() {
	if that.hooks.OnChange != nil {
		that.hooks.OnChange(that.session.Snapshot())
	}
}
