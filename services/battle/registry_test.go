package battle

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())

	code, playerID, err := h.reg.CreateRoom(ctx, "conn-alice", "  Alice  ", Options{Rounds: 500})
	require.NoError(t, err)
	assert.Regexp(t, roomCodePattern, code)
	assert.NotEmpty(t, playerID)

	room, err := h.reg.Lookup(code)
	require.NoError(t, err)
	snap := h.snapshot(t, room)
	assert.Equal(t, StateLobby, snap.State)
	assert.Equal(t, DefaultSettings().MaxRounds, snap.Options.Rounds)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Alice", snap.Players[0].Name)

	host, ok := snap.Host()
	require.True(t, ok)
	assert.Equal(t, playerID, host.ID)
}

func TestRegistryOptions(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	opts := []RegistryOption{
		WithClock(clock),
		WithSeed(9),
		WithLogger(zerolog.Nop()),
		WithIDGenerator(func() string { return "fixed-id" }),
	}
	reg := NewRegistry(DefaultSettings(), vocabulary.NewStore(testWords(8)), newRecorder(), opts...)
	t.Cleanup(func() { _ = reg.Close(ctx) })

	assert.Equal(t, Clock(clock), reg.clock)
	_, playerID, err := reg.CreateRoom(ctx, "conn-alice", "Alice", Options{})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", playerID)
}

func TestCreateRoomDefaultsHostName(t *testing.T) {
	h := newHarness(t, 12, DefaultSettings())
	code, _, err := h.reg.CreateRoom(context.Background(), "conn-1", "   ", Options{})
	require.NoError(t, err)

	room, err := h.reg.Lookup(code)
	require.NoError(t, err)
	assert.Equal(t, "Host", h.snapshot(t, room).Players[0].Name)
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())
	code, _, err := h.reg.CreateRoom(ctx, "conn-alice", "Alice", Options{})
	require.NoError(t, err)

	t.Run("code is case-insensitive", func(t *testing.T) {
		id, err := h.reg.JoinRoom(ctx, " "+strings.ToLower(code)+" ", "conn-bob", "Bob")
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		joined := h.out.last(t, "conn-alice", EventPlayerJoined).(PlayerEventPayload)
		assert.Equal(t, "Bob", joined.Name)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := h.reg.JoinRoom(ctx, "ZZZZZZ", "conn-carol", "Carol")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("same connection twice", func(t *testing.T) {
		_, err := h.reg.JoinRoom(ctx, code, "conn-bob", "Bob again")
		assert.ErrorIs(t, err, ErrAlreadyInRoom)
	})

	t.Run("after start", func(t *testing.T) {
		room, err := h.reg.Lookup(code)
		require.NoError(t, err)
		require.NoError(t, room.Start(ctx, "conn-alice"))

		_, err = h.reg.JoinRoom(ctx, code, "conn-carol", "Carol")
		assert.ErrorIs(t, err, ErrAlreadyStarted)
	})
}

func TestConcurrentCreateAndRemove(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())

	var wg sync.WaitGroup
	codes := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, _, err := h.reg.CreateRoom(ctx, fmt.Sprintf("conn-%d", i), "Host", Options{})
			assert.NoError(t, err)
			codes <- code
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "code %s handed out twice", code)
		seen[code] = true
	}
	assert.Equal(t, 50, h.reg.Len())

	for code := range seen {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			h.reg.RemoveRoom(code)
		}(code)
	}
	wg.Wait()
	assert.Equal(t, 0, h.reg.Len())
}

func TestRemoveRoomStopsIt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())
	room, _ := h.lobbyOf(t, Options{}, "Bob")

	h.reg.RemoveRoom(strings.ToLower(room.Code()))
	select {
	case <-room.Done():
	case <-time.After(time.Second):
		t.Fatal("room loop still running")
	}

	assert.ErrorIs(t, room.Start(ctx, "conn-alice"), ErrRoomClosed)
	_, err := h.reg.JoinRoom(ctx, room.Code(), "conn-carol", "Carol")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryClose(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())
	first, _ := h.lobbyOf(t, Options{})
	_, _, err := h.reg.CreateRoom(ctx, "conn-other", "Other", Options{})
	require.NoError(t, err)

	closeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, h.reg.Close(closeCtx))

	assert.Equal(t, 0, h.reg.Len())
	_, err = first.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestRoomsUseLessonFilter(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 12, DefaultSettings())
	room, _ := h.lobbyOf(t, Options{Lesson: 1}, "Bob")

	require.NoError(t, room.Start(ctx, "conn-alice"))
	starting := h.out.last(t, "conn-alice", EventBattleStarting).(BattleStartingPayload)
	// Lesson 1 has six words.
	assert.Equal(t, 6, starting.TotalQuestions)

	h.advance(room, 3*time.Second)
	q := h.out.last(t, "conn-alice", EventNewQuestion).(NewQuestionPayload)
	for _, o := range q.Options {
		found := false
		for _, w := range h.words {
			if w.Traditional == o.Traditional {
				found = true
				assert.Equal(t, 1, w.Lesson)
			}
		}
		assert.True(t, found)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Room not found! Check the code and try again.", Message(ErrNotFound))
	assert.Equal(t, "Room is full!", Message(fmt.Errorf("joining: %w", ErrRoomFull)))
	assert.Equal(t, "Something went wrong.", Message(fmt.Errorf("boom")))
}
