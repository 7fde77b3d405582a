package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmines/minesweeper-backend/internal/apperror"
	"github.com/playmines/minesweeper-backend/internal/entity"
	"github.com/playmines/minesweeper-backend/internal/session"
)

type fakeRepo struct {
	mu    sync.Mutex
	rooms map[string]entity.RoomSnapshot
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rooms: make(map[string]entity.RoomSnapshot)}
}

func (that *fakeRepo) Save(_ context.Context, roomID string, snapshot entity.RoomSnapshot) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.rooms[roomID] = snapshot
	return nil
}

func (that *fakeRepo) GetByID(_ context.Context, roomID string) (entity.RoomSnapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	snapshot, ok := that.rooms[roomID]
	if !ok {
		return entity.RoomSnapshot{}, apperror.ErrRoomNotFound
	}
	return snapshot, nil
}

func (that *fakeRepo) saved(roomID string) (entity.RoomSnapshot, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()
	snapshot, ok := that.rooms[roomID]
	return snapshot, ok
}

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []session.Event
}

func (that *fakeConn) PlayerID() string { return that.id }

func (that *fakeConn) Send(event session.Event) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.events = append(that.events, event)
	return nil
}

func (that *fakeConn) received() []session.Event {
	that.mu.Lock()
	defer that.mu.Unlock()
	return append([]session.Event(nil), that.events...)
}

func hasAction(events []session.Event, action string) bool {
	for _, event := range events {
		if event.Action() == action {
			return true
		}
	}
	return false
}

func testRegistry(t *testing.T, repo roomRepository) *Registry {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry := New(ctx, logger, repo, session.StartParams{
		Width:     9,
		Height:    9,
		MineCount: 10,
	})
	t.Cleanup(registry.Close)

	return registry
}

func TestRegistry_JoinAndStart(t *testing.T) {
	// Given: two players joined into the same lazily created room
	repo := newFakeRepo()
	registry := testRegistry(t, repo)

	alice := &fakeConn{id: "alice"}
	bob := &fakeConn{id: "bob"}

	registry.Join("room-1", alice, "Alice")
	registry.Join("room-1", bob, "Bob")

	// When: a game starts with zero-valued settings
	require.NoError(t, registry.StartGame("room-1", session.StartParams{}))

	// Then: both subscribers get the ready broadcast, with configured defaults
	require.Eventually(t, func() bool {
		return hasAction(alice.received(), session.ActionSessionReady) &&
			hasAction(bob.received(), session.ActionSessionReady)
	}, time.Second, 10*time.Millisecond)

	for _, event := range alice.received() {
		if ready, ok := event.(session.SessionReadyEvent); ok {
			assert.Equal(t, 9, ready.Width)
			assert.Equal(t, 10, ready.MineCount)
		}
	}

	// Then: the roster snapshot was persisted
	require.Eventually(t, func() bool {
		snapshot, ok := repo.saved("room-1")
		return ok && len(snapshot.PlayerIDs) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRegistry_UnknownRoom(t *testing.T) {
	registry := testRegistry(t, newFakeRepo())

	// When: actions target a room nobody joined
	err := registry.SubmitMove("nope", "alice", 0, 0)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)

	err = registry.StartGame("nope", session.StartParams{})
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)

	err = registry.Leave("nope", "alice")
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRegistry_RoomDroppedWhenEmpty(t *testing.T) {
	// Given: a room with one player
	registry := testRegistry(t, newFakeRepo())

	alice := &fakeConn{id: "alice"}
	registry.Join("room-1", alice, "Alice")

	// When: the last player leaves
	require.NoError(t, registry.Leave("room-1", "alice"))

	// Then: the room disappears from the table
	require.Eventually(t, func() bool {
		err := registry.StartGame("room-1", session.StartParams{})
		return errors.Is(err, apperror.ErrRoomNotFound)
	}, time.Second, 10*time.Millisecond)
}

func TestRegistry_SeedsDefaultsFromSnapshot(t *testing.T) {
	// Given: a persisted snapshot with custom settings
	repo := newFakeRepo()
	repo.rooms["room-1"] = entity.RoomSnapshot{
		Width:       16,
		Height:      16,
		MineCount:   40,
		TurnSeconds: 15,
	}

	registry := testRegistry(t, repo)

	alice := &fakeConn{id: "alice"}
	registry.Join("room-1", alice, "Alice")

	// When: the game starts without explicit settings
	require.NoError(t, registry.StartGame("room-1", session.StartParams{}))

	// Then: the persisted settings apply
	require.Eventually(t, func() bool {
		for _, event := range alice.received() {
			if ready, ok := event.(session.SessionReadyEvent); ok {
				return ready.Width == 16 && ready.MineCount == 40
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}
