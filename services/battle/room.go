package battle

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/rs/zerolog"
)

type State string

const (
	StateLobby       State = "LOBBY"
	StateCountdown   State = "COUNTDOWN"
	StateQuestion    State = "QUESTION"
	StateLeaderboard State = "LEADERBOARD"
	StateEnded       State = "ENDED"
)

type answer struct {
	option  string
	at      time.Time
	correct bool
	points  int
}

// Room is one battle. All of its state is owned by the goroutine running
// loop; every operation is a closure sent through inbox and executed there,
// one at a time, in arrival order.
type Room struct {
	code     string
	settings Settings
	options  Options
	pool     []vocabulary.Word

	out        Broadcaster
	clock      Clock
	rng        *rand.Rand
	tokens     TokenIssuer
	sink       ResultSink
	newID      func() string
	unregister func(code string, r *Room)
	logger     zerolog.Logger

	inbox    chan func()
	quit     chan struct{}
	quitOnce sync.Once
	stopped  chan struct{}

	// Everything below is touched only by loop
	state         State
	version       uint64
	players       []*Player
	deck          []vocabulary.Word
	index         int
	current       *Question
	answers       map[string]answer
	questionStart time.Time
	deadline      time.Time
	timer         Timer
	startedAt     time.Time
	lastActivity  time.Time
	lastBoard     *ShowLeaderboardPayload
	lastFinal     *BattleEndedPayload
	closed        bool
}

// Snapshot is a point-in-time copy of a room for readers outside the loop.
type Snapshot struct {
	Code           string
	State          State
	Options        Options
	MaxPlayers     int
	Players        []PlayerView
	QuestionNum    int
	TotalQuestions int
	Deadline       time.Time
}

func (s Snapshot) Host() (PlayerView, bool) {
	for _, p := range s.Players {
		if p.IsHost {
			return p, true
		}
	}
	return PlayerView{}, false
}

func (r *Room) Code() string {
	return r.code
}

// Done is closed once the room's loop has exited.
func (r *Room) Done() <-chan struct{} {
	return r.stopped
}

// Close tears the room down from outside. Pending timers are cancelled.
func (r *Room) Close() {
	r.quitOnce.Do(func() { close(r.quit) })
}

func (r *Room) loop() {
	defer close(r.stopped)
	for {
		select {
		case cmd := <-r.inbox:
			r.exec(cmd)
			if r.closed {
				return
			}
		case <-r.quit:
			r.teardown("closed")
			return
		}
	}
}

// exec runs one command. A panic is an invariant violation: only this room
// is torn down.
func (r *Room) exec(cmd func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.abort(fmt.Errorf("panic: %v", rec))
		}
	}()
	cmd()
}

// call runs fn on the loop and waits for its result.
func (r *Room) call(ctx context.Context, fn func() error) error {
	var result error
	done := make(chan struct{})
	cmd := func() {
		result = fn()
		close(done)
	}

	select {
	case r.inbox <- cmd:
	case <-r.stopped:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return result
	case <-r.stopped:
		select {
		case <-done:
			return result
		default:
			return ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting. Used by timers.
func (r *Room) post(fn func()) {
	select {
	case r.inbox <- fn:
	case <-r.stopped:
	}
}

func (r *Room) join(ctx context.Context, connID, name string) (string, error) {
	var playerID string
	err := r.call(ctx, func() error {
		r.touch()
		if r.state != StateLobby {
			return ErrAlreadyStarted
		}
		if len(r.players) >= r.settings.MaxPlayers {
			return ErrRoomFull
		}
		if r.playerByConn(connID) != nil {
			return ErrAlreadyInRoom
		}

		isHost := len(r.players) == 0
		fallback := defaultPlayerName
		if isHost {
			fallback = defaultHostName
		}
		p := &Player{
			ID:        r.newID(),
			Name:      cleanName(name, fallback),
			IsHost:    isHost,
			Connected: true,
			connID:    connID,
		}
		r.players = append(r.players, p)
		r.out.Attach(connID, r.code)

		event := EventRoomJoined
		if isHost {
			event = EventRoomCreated
		}
		r.out.ToConn(connID, event, RoomCreatedPayload{
			RoomCode:    r.code,
			PlayerID:    p.ID,
			IsHost:      isHost,
			RejoinToken: r.issueToken(p.ID),
		})
		r.broadcastLobby()
		if !isHost {
			r.out.ToRoom(r.code, EventPlayerJoined, PlayerEventPayload{PlayerID: p.ID, Name: p.Name})
		}

		r.logger.Info().Str("player", p.ID).Bool("host", isHost).
			Msgf("[JOIN] %s joined room %s (%d players)", p.Name, r.code, len(r.players))
		playerID = p.ID
		return nil
	})
	return playerID, err
}

// Start moves the lobby into the countdown. Host only.
func (r *Room) Start(ctx context.Context, connID string) error {
	return r.call(ctx, func() error {
		r.touch()
		p := r.playerByConn(connID)
		if p == nil {
			return ErrPlayerNotFound
		}
		if !p.IsHost {
			return ErrNotHost
		}
		if r.state != StateLobby {
			return ErrAlreadyStarted
		}
		if len(r.players) < r.settings.MinPlayers {
			return ErrNotEnoughPlayers
		}
		deck, err := drawDeck(r.rng, r.pool, r.options.Rounds)
		if err != nil {
			return err
		}
		r.startCountdown(deck)
		return nil
	})
}

// RequestQuestion re-sends the open question to the requester. The
// countdown is never shortened by it.
func (r *Room) RequestQuestion(ctx context.Context, connID string) error {
	return r.call(ctx, func() error {
		r.touch()
		p := r.playerByConn(connID)
		if p == nil {
			return ErrPlayerNotFound
		}
		if r.state == StateQuestion {
			_, answered := r.answers[p.ID]
			r.out.ToConn(connID, EventNewQuestion, r.questionPayload(answered))
		}
		return nil
	})
}

func (r *Room) SubmitAnswer(ctx context.Context, connID, playerID, option string) error {
	return r.call(ctx, func() error {
		r.touch()
		p := r.playerByID(playerID)
		if p == nil || p.connID != connID {
			return ErrPlayerNotFound
		}
		return r.submit(p, option)
	})
}

// TimeUp is the host's local timer running out. The server deadline stays
// authoritative: the question only closes if that deadline has passed.
func (r *Room) TimeUp(ctx context.Context, connID string) error {
	return r.call(ctx, func() error {
		p := r.playerByConn(connID)
		if p == nil {
			return ErrPlayerNotFound
		}
		if !p.IsHost || r.state != StateQuestion {
			return nil
		}
		if r.clock.Now().Before(r.deadline) {
			r.logger.Debug().Msgf("[TIME-UP] Early time_up for room %s ignored", r.code)
			return nil
		}
		r.closeQuestion("time_up")
		return nil
	})
}

// NextQuestion lets the host skip the rest of the leaderboard delay.
func (r *Room) NextQuestion(ctx context.Context, connID string) error {
	return r.call(ctx, func() error {
		r.touch()
		p := r.playerByConn(connID)
		if p == nil {
			return ErrPlayerNotFound
		}
		if !p.IsHost {
			return ErrNotHost
		}
		if r.state == StateLeaderboard {
			r.advance()
		}
		return nil
	})
}

// Leave removes the caller's own player from the roster.
func (r *Room) Leave(ctx context.Context, connID, playerID string) error {
	return r.call(ctx, func() error {
		p := r.playerByID(playerID)
		if p == nil || p.connID != connID {
			return ErrPlayerNotFound
		}
		r.removePlayer(p, "left")
		return nil
	})
}

// Disconnect handles a dropped connection. Mid-game the player keeps its
// seat; in the lobby or after the end it is removed.
func (r *Room) Disconnect(ctx context.Context, connID string) error {
	return r.call(ctx, func() error {
		p := r.playerByConn(connID)
		if p == nil {
			return nil
		}
		switch r.state {
		case StateLobby, StateEnded:
			r.removePlayer(p, "disconnected")
		default:
			r.markDisconnected(p)
		}
		return nil
	})
}

func (r *Room) rejoin(ctx context.Context, connID, playerID string) error {
	return r.call(ctx, func() error {
		r.touch()
		p := r.playerByID(playerID)
		if p == nil {
			return ErrPlayerNotFound
		}
		if p.Connected && p.connID != connID {
			r.out.ToConn(p.connID, EventError, ErrorPayload{Message: "You rejoined from another window."})
			r.out.Detach(p.connID, r.code)
		}
		p.connID = connID
		p.Connected = true
		r.out.Attach(connID, r.code)

		if h := r.host(); h != nil && h != p && !h.Connected {
			h.IsHost = false
			p.IsHost = true
		}

		r.out.ToConn(connID, EventRoomRejoined, RoomRejoinedPayload{
			RoomCode:       r.code,
			PlayerID:       p.ID,
			IsHost:         p.IsHost,
			State:          r.state,
			QuestionNum:    r.index + 1,
			TotalQuestions: len(r.deck),
			Score:          p.Score,
			Streak:         p.Streak,
		})
		r.broadcastLobby()

		switch r.state {
		case StateQuestion:
			_, answered := r.answers[p.ID]
			r.out.ToConn(connID, EventNewQuestion, r.questionPayload(answered))
		case StateLeaderboard:
			if r.lastBoard != nil {
				r.out.ToConn(connID, EventShowLeaderboard, *r.lastBoard)
			}
		case StateEnded:
			if r.lastFinal != nil {
				r.out.ToConn(connID, EventBattleEnded, *r.lastFinal)
			}
		}

		r.logger.Info().Str("player", p.ID).Msgf("[REJOIN] %s is back in room %s", p.Name, r.code)
		return nil
	})
}

func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.call(ctx, func() error {
		snap = Snapshot{
			Code:           r.code,
			State:          r.state,
			Options:        r.options,
			MaxPlayers:     r.settings.MaxPlayers,
			Players:        r.playerViews(),
			QuestionNum:    r.index + 1,
			TotalQuestions: len(r.deck),
			Deadline:       r.deadline,
		}
		return nil
	})
	return snap, err
}

// ---------------------------------------------------------------
// Loop-side helpers
// ---------------------------------------------------------------

func (r *Room) touch() {
	r.lastActivity = r.clock.Now()
}

func (r *Room) setState(s State) {
	r.logger.Debug().Msgf("[PHASE-CHANGE] Room %s: %s -> %s", r.code, r.state, s)
	r.state = s
	r.version++
}

// schedule arms the room's single timer. The wake-up is dropped if the room
// has changed state in the meantime.
func (r *Room) schedule(d time.Duration, fn func()) {
	r.stopTimer()
	version := r.version
	r.timer = r.clock.AfterFunc(d, func() {
		r.post(func() {
			if r.closed || r.version != version {
				r.logger.Debug().Msgf("[TIMER] Stale wake-up for room %s ignored", r.code)
				return
			}
			fn()
		})
	})
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) issueToken(playerID string) string {
	if r.tokens == nil {
		return ""
	}
	token, err := r.tokens.Issue(r.code, playerID)
	if err != nil {
		r.logger.Error().Err(err).Msg("[TOKEN-ERROR] Could not sign rejoin token")
		return ""
	}
	return token
}

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) playerByConn(connID string) *Player {
	if connID == "" {
		return nil
	}
	for _, p := range r.players {
		if p.connID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) host() *Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) playerViews() []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		views = append(views, p.view())
	}
	return views
}

func (r *Room) broadcastLobby() {
	r.out.ToRoom(r.code, EventLobbyUpdate, LobbyUpdatePayload{Players: r.playerViews()})
}

// removePlayer drops p from the roster, hands the host role on and tears
// the room down once nobody is left.
func (r *Room) removePlayer(p *Player, reason string) {
	for i, candidate := range r.players {
		if candidate == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	delete(r.answers, p.ID)
	if p.Connected {
		r.out.Detach(p.connID, r.code)
	}
	p.Connected = false
	p.connID = ""

	r.logger.Info().Str("player", p.ID).Str("reason", reason).
		Msgf("[LEAVE] %s left room %s (%d players)", p.Name, r.code, len(r.players))

	if len(r.players) == 0 {
		r.teardown("empty")
		return
	}
	if p.IsHost {
		p.IsHost = false
		r.reassignHost()
	}

	r.out.ToRoom(r.code, EventPlayerLeft, PlayerEventPayload{PlayerID: p.ID, Name: p.Name, Reason: reason})
	r.broadcastLobby()
	r.checkAllAnswered()
}

func (r *Room) markDisconnected(p *Player) {
	r.out.Detach(p.connID, r.code)
	p.Connected = false
	p.connID = ""
	if p.IsHost {
		r.reassignHost()
	}

	r.logger.Info().Str("player", p.ID).Msgf("[DISCONNECT] %s dropped from room %s during %s", p.Name, r.code, r.state)

	r.out.ToRoom(r.code, EventPlayerLeft, PlayerEventPayload{PlayerID: p.ID, Name: p.Name, Reason: "disconnected"})
	r.broadcastLobby()
	r.checkAllAnswered()
}

// reassignHost gives the host role to the earliest-joined connected player
// that is not already host. With nobody connected the role stays where it
// is, or goes to the first player if no one holds it.
func (r *Room) reassignHost() {
	var next *Player
	for _, p := range r.players {
		if p.Connected && !p.IsHost {
			next = p
			break
		}
	}
	if next == nil {
		if r.host() != nil || len(r.players) == 0 {
			return
		}
		next = r.players[0]
	}
	for _, p := range r.players {
		p.IsHost = false
	}
	next.IsHost = true
	r.logger.Info().Str("player", next.ID).Msgf("[HOST] %s is now host of room %s", next.Name, r.code)
}

// abort handles a broken invariant: members are told, the room goes away,
// nothing else is touched.
func (r *Room) abort(err error) {
	r.logger.Error().Err(err).Str("state", string(r.state)).Msgf("[ROOM-ABORT] Tearing down room %s", r.code)
	r.out.ToRoom(r.code, EventError, ErrorPayload{Message: "This battle was closed after an internal error."})
	r.teardown("aborted")
}

func (r *Room) teardown(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	r.stopTimer()
	for _, p := range r.players {
		if p.Connected {
			r.out.Detach(p.connID, r.code)
		}
	}
	if r.unregister != nil {
		r.unregister(r.code, r)
	}
	r.logger.Info().Str("reason", reason).Msgf("[ROOM-CLOSE] Room %s removed", r.code)
}
