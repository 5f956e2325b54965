package battle

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	game_constants "github.com/nicolasvargaszz/learn-chinese-game/constants/game"
	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const roomInboxSize = 256

// Registry maps room codes to live rooms. It is the only structure shared
// between rooms and never calls into a room while holding its lock.
type Registry struct {
	settings Settings
	vocab    *vocabulary.Store
	out      Broadcaster
	clock    Clock
	tokens   TokenIssuer
	sink     ResultSink
	newID    func() string
	logger   zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
}

type RegistryOption func(*Registry)

func WithClock(c Clock) RegistryOption {
	return func(r *Registry) { r.clock = c }
}

func WithTokens(t TokenIssuer) RegistryOption {
	return func(r *Registry) { r.tokens = t }
}

func WithResultSink(s ResultSink) RegistryOption {
	return func(r *Registry) { r.sink = s }
}

// WithSeed makes room codes, decks and options reproducible.
func WithSeed(seed uint64) RegistryOption {
	return func(r *Registry) { r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithIDGenerator(f func() string) RegistryOption {
	return func(r *Registry) { r.newID = f }
}

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(settings Settings, vocab *vocabulary.Store, out Broadcaster, opts ...RegistryOption) *Registry {
	r := &Registry{
		settings: settings,
		vocab:    vocab,
		out:      out,
		clock:    SystemClock(),
		newID:    uuid.NewString,
		logger:   log.Logger,
		rooms:    make(map[string]*Room),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.vocab == nil {
		r.vocab = vocabulary.FallbackStore()
	}
	return r
}

// CreateRoom opens a new room in LOBBY with the caller as host.
func (r *Registry) CreateRoom(ctx context.Context, connID, hostName string, opts Options) (code, playerID string, err error) {
	opts = r.settings.normalize(opts)
	pool := r.vocab.Filter(opts.Lesson, opts.Category)

	room := r.register(opts, pool)
	playerID, err = room.join(ctx, connID, hostName)
	if err != nil {
		room.Close()
		return "", "", err
	}
	r.logger.Info().Str("room", room.code).Int("words", len(pool)).Int("rounds", opts.Rounds).
		Msg("[ROOM-CREATE] Room created")
	return room.code, playerID, nil
}

// JoinRoom adds a non-host player to the room behind code.
func (r *Registry) JoinRoom(ctx context.Context, code, connID, name string) (string, error) {
	room, err := r.Lookup(code)
	if err != nil {
		return "", err
	}
	playerID, err := room.join(ctx, connID, name)
	if errors.Is(err, ErrRoomClosed) {
		return "", ErrNotFound
	}
	return playerID, err
}

// Rejoin moves a known player onto a new connection. The token must have
// been issued for that room and player.
func (r *Registry) Rejoin(ctx context.Context, connID, code, playerID, token string) error {
	if r.tokens == nil {
		return ErrInvalidToken
	}
	tokenRoom, tokenPlayer, err := r.tokens.Verify(token)
	if err != nil {
		return ErrInvalidToken
	}
	code = NormalizeCode(code)
	if tokenRoom != code || tokenPlayer != playerID {
		return ErrInvalidToken
	}
	room, err := r.Lookup(code)
	if err != nil {
		return err
	}
	err = room.rejoin(ctx, connID, playerID)
	if errors.Is(err, ErrRoomClosed) {
		return ErrNotFound
	}
	return err
}

func (r *Registry) Lookup(code string) (*Room, error) {
	code = NormalizeCode(code)
	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return room, nil
}

// RemoveRoom drops the room from the registry and stops it.
func (r *Registry) RemoveRoom(code string) {
	code = NormalizeCode(code)
	r.mu.Lock()
	room, ok := r.rooms[code]
	delete(r.rooms, code)
	r.mu.Unlock()
	if ok {
		room.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close stops every room and waits for their loops to exit or ctx to end.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	rooms := make([]*Room, 0, len(r.rooms))
	for code, room := range r.rooms {
		rooms = append(rooms, room)
		delete(r.rooms, code)
	}
	r.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
	for _, room := range rooms {
		select {
		case <-room.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Registry) register(opts Options, pool []vocabulary.Word) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCode()
	for {
		if _, taken := r.rooms[code]; !taken {
			break
		}
		r.logger.Debug().Str("room", code).Msg("[ROOM-CREATE] Code collision, drawing again")
		code = r.generateCode()
	}

	room := &Room{
		code:       code,
		settings:   r.settings,
		options:    opts,
		pool:       pool,
		out:        r.out,
		clock:      r.clock,
		rng:        rand.New(rand.NewPCG(r.rng.Uint64(), r.rng.Uint64())),
		tokens:     r.tokens,
		sink:       r.sink,
		newID:      r.newID,
		unregister: r.forget,
		logger:     r.logger.With().Str("room", code).Logger(),
		inbox:      make(chan func(), roomInboxSize),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		state:      StateLobby,
		index:      -1,
	}
	room.lastActivity = r.clock.Now()
	r.rooms[code] = room
	go room.loop()
	return room
}

// forget is called from a room's own loop when it tears itself down.
func (r *Registry) forget(code string, room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[code] == room {
		delete(r.rooms, code)
	}
}

// generateCode must be called with mu held.
func (r *Registry) generateCode() string {
	charset := game_constants.RoomCodeCharset
	b := make([]byte, game_constants.RoomCodeLength)
	for i := range b {
		b[i] = charset[r.rng.IntN(len(charset))]
	}
	return string(b)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
