package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/playmines/minesweeper-backend/internal/apperror"
	"github.com/playmines/minesweeper-backend/internal/entity"
	"github.com/playmines/minesweeper-backend/internal/session"
)

const saveTimeout = 5 * time.Second

// Conn is one subscribed connection handle. The transport implements it.
type Conn interface {
	PlayerID() string
	Send(event session.Event) error
}

type roomRepository interface {
	Save(ctx context.Context, roomID string, snapshot entity.RoomSnapshot) error
	GetByID(ctx context.Context, roomID string) (entity.RoomSnapshot, error)
}

// Registry maps room ids to their coordinators and fans coordinator events
// out to the room's subscribers. At most one coordinator exists per room id;
// the first writer wins on lazy creation.
type Registry struct {
	logger   *slog.Logger
	repo     roomRepository
	defaults session.StartParams

	ctx context.Context

	mu    sync.Mutex
	rooms map[string]*room
}

func New(ctx context.Context, logger *slog.Logger, repo roomRepository, defaults session.StartParams) *Registry {
	return &Registry{
		logger:   logger.With("component", "registry"),
		repo:     repo,
		defaults: defaults,
		ctx:      ctx,
		rooms:    make(map[string]*room),
	}
}

// Join subscribes the connection to the room, creating the room when it does
// not exist yet, and adds the player to the session roster.
func (that *Registry) Join(roomID string, conn Conn, name string) {
	room := that.getOrCreate(roomID)
	room.subscribe(conn)
	room.coordinator.PlayerConnected(conn.PlayerID(), name)
}

// Leave unsubscribes the connection and removes the player from the roster.
func (that *Registry) Leave(roomID, playerID string) error {
	room, err := that.get(roomID)
	if err != nil {
		return err
	}

	room.unsubscribe(playerID)
	room.coordinator.PlayerDisconnected(playerID)

	return nil
}

// StartGame launches a round in the room. Zero-valued settings fall back to
// the room's last known settings, then to the configured defaults.
func (that *Registry) StartGame(roomID string, params session.StartParams) error {
	room, err := that.get(roomID)
	if err != nil {
		return err
	}

	room.coordinator.StartGame(room.normalize(params))

	return nil
}

// SubmitMove routes a cell open to the room's coordinator.
func (that *Registry) SubmitMove(roomID, playerID string, row, col int) error {
	room, err := that.get(roomID)
	if err != nil {
		return err
	}

	room.coordinator.SubmitMove(playerID, row, col)

	return nil
}

// Close stops every room loop.
func (that *Registry) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, room := range that.rooms {
		room.stop()
		delete(that.rooms, id)
	}
}

func (that *Registry) get(roomID string) (*room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

func (that *Registry) getOrCreate(roomID string) *room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if existing, ok := that.rooms[roomID]; ok {
		return existing
	}

	newRoom := &room{
		logger:   that.logger.With("roomID", roomID),
		subs:     make(map[string]Conn),
		defaults: that.loadDefaults(roomID),
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness, not crypto
	newRoom.coordinator = session.NewCoordinator(newRoom.logger, rng, newRoom, session.Hooks{
		OnChange: func(snapshot entity.RoomSnapshot) {
			that.persist(roomID, snapshot)
		},
		OnEmpty: func() {
			that.remove(roomID)
		},
	})

	ctx, cancel := context.WithCancel(that.ctx)
	newRoom.cancel = cancel

	go newRoom.coordinator.Run(ctx)

	that.rooms[roomID] = newRoom

	newRoom.logger.Info("room created")

	return newRoom
}

func (that *Registry) remove(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return
	}

	room.stop()
	delete(that.rooms, roomID)

	room.logger.Info("room abandoned, dropped")
}

// loadDefaults seeds a new room's settings from its persisted snapshot when
// one exists, falling back to configured defaults.
func (that *Registry) loadDefaults(roomID string) session.StartParams {
	ctx, cancel := context.WithTimeout(that.ctx, saveTimeout)
	defer cancel()

	snapshot, err := that.repo.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return that.defaults
	}
	if err != nil {
		that.logger.Error("failed to load room snapshot", "roomID", roomID, "error", err)
		return that.defaults
	}

	if snapshot.Width <= 0 || snapshot.Height <= 0 {
		return that.defaults
	}

	return session.StartParams{
		Width:       snapshot.Width,
		Height:      snapshot.Height,
		MineCount:   snapshot.MineCount,
		TurnSeconds: snapshot.TurnSeconds,
	}
}

// persist saves the snapshot without ever blocking the room loop.
func (that *Registry) persist(roomID string, snapshot entity.RoomSnapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := that.repo.Save(ctx, roomID, snapshot); err != nil {
			that.logger.Error("failed to save room snapshot", "roomID", roomID, "error", err)
		}
	}()
}

// room pairs a coordinator with its subscriber set and implements the
// coordinator's event sink.
type room struct {
	logger      *slog.Logger
	coordinator *session.Coordinator
	cancel      context.CancelFunc

	mu       sync.RWMutex
	subs     map[string]Conn
	defaults session.StartParams
}

func (that *room) Broadcast(event session.Event) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for playerID, conn := range that.subs {
		if err := conn.Send(event); err != nil {
			that.logger.Error("failed to send event", "playerID", playerID, "action", event.Action(), "error", err)
		}
	}
}

func (that *room) SendTo(playerID string, event session.Event) {
	that.mu.RLock()
	conn, ok := that.subs[playerID]
	that.mu.RUnlock()

	if !ok {
		that.logger.Warn("no connection for player", "playerID", playerID, "action", event.Action())
		return
	}

	if err := conn.Send(event); err != nil {
		that.logger.Error("failed to send event", "playerID", playerID, "action", event.Action(), "error", err)
	}
}

func (that *room) subscribe(conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.subs[conn.PlayerID()] = conn
}

func (that *room) unsubscribe(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.subs, playerID)
}

func (that *room) normalize(params session.StartParams) session.StartParams {
	that.mu.Lock()
	defer that.mu.Unlock()

	if params.Width <= 0 {
		params.Width = that.defaults.Width
	}
	if params.Height <= 0 {
		params.Height = that.defaults.Height
	}
	if params.MineCount <= 0 {
		params.MineCount = that.defaults.MineCount
	}
	if params.TurnSeconds < 0 {
		params.TurnSeconds = that.defaults.TurnSeconds
	}

	that.defaults = params

	return params
}

func (that *room) stop() {
	that.coordinator.Stop()

	if that.cancel != nil {
		that.cancel()
	}
}
