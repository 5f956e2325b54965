package battle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeClock only moves when Advance is called. Due timers fire in order of
// their deadline from the calling goroutine.
type fakeClock struct {
	mu         sync.Mutex
	now        time.Time
	timers     []*fakeTimer
	ignoreStop bool // simulates a wake-up that was already queued when stopped
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.clock.ignoreStop {
		return false
	}
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

type delivery struct {
	connID  string
	event   string
	payload any
}

// recorder is a Broadcaster that keeps every delivery per connection.
type recorder struct {
	mu         sync.Mutex
	members    map[string]map[string]bool
	deliveries []delivery
	panicOn    string
}

func newRecorder() *recorder {
	return &recorder{members: make(map[string]map[string]bool)}
}

func (r *recorder) Attach(connID, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[roomCode] == nil {
		r.members[roomCode] = make(map[string]bool)
	}
	r.members[roomCode][connID] = true
}

func (r *recorder) Detach(connID, roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[roomCode], connID)
}

func (r *recorder) ToConn(connID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{connID: connID, event: event, payload: payload})
}

func (r *recorder) ToRoom(roomCode, event string, payload any) {
	if event == r.panicOn {
		panic(fmt.Sprintf("broadcast of %s blew up", event))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]string, 0, len(r.members[roomCode]))
	for conn := range r.members[roomCode] {
		conns = append(conns, conn)
	}
	sort.Strings(conns)
	for _, conn := range conns {
		r.deliveries = append(r.deliveries, delivery{connID: conn, event: event, payload: payload})
	}
}

func (r *recorder) received(connID, event string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, d := range r.deliveries {
		if d.connID == connID && d.event == event {
			out = append(out, d.payload)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, connID, event string) any {
	t.Helper()
	all := r.received(connID, event)
	require.NotEmpty(t, all, "%s never received %s", connID, event)
	return all[len(all)-1]
}

type fakeTokens struct{}

func (fakeTokens) Issue(roomCode, playerID string) (string, error) {
	return roomCode + "|" + playerID, nil
}

func (fakeTokens) Verify(token string) (string, string, error) {
	room, player, ok := strings.Cut(token, "|")
	if !ok {
		return "", "", ErrInvalidToken
	}
	return room, player, nil
}

type memorySink struct {
	summaries chan Summary
}

func (s *memorySink) Record(_ context.Context, summary Summary) error {
	s.summaries <- summary
	return nil
}

func testWords(n int) []vocabulary.Word {
	base := []vocabulary.Word{
		{Traditional: "你好", Pinyin: "nǐ hǎo", English: "hello", Category: "Greetings", Lesson: 1},
		{Traditional: "謝謝", Pinyin: "xièxie", English: "thank you", Category: "Greetings", Lesson: 1},
		{Traditional: "老師", Pinyin: "lǎoshī", English: "teacher", Category: "People", Lesson: 1},
		{Traditional: "學生", Pinyin: "xuéshēng", English: "student", Category: "People", Lesson: 1},
		{Traditional: "我", Pinyin: "wǒ", English: "I, me", Category: "Pronouns", Lesson: 1},
		{Traditional: "你", Pinyin: "nǐ", English: "you", Category: "Pronouns", Lesson: 1},
		{Traditional: "媽媽", Pinyin: "māma", English: "mom", Category: "Family", Lesson: 2},
		{Traditional: "爸爸", Pinyin: "bàba", English: "dad", Category: "Family", Lesson: 2},
		{Traditional: "吃", Pinyin: "chī", English: "to eat", Category: "Verbs", Lesson: 3},
		{Traditional: "喝", Pinyin: "hē", English: "to drink", Category: "Verbs", Lesson: 3},
		{Traditional: "茶", Pinyin: "chá", English: "tea", Category: "Food", Lesson: 3},
		{Traditional: "今天", Pinyin: "jīntiān", English: "today", Category: "Time", Lesson: 4},
	}
	if n > len(base) {
		n = len(base)
	}
	return base[:n]
}

type harness struct {
	reg   *Registry
	clock *fakeClock
	out   *recorder
	sink  *memorySink
	words []vocabulary.Word
}

func newHarness(t *testing.T, words int, settings Settings) *harness {
	t.Helper()
	var seq atomic.Int64
	h := &harness{
		clock: newFakeClock(),
		out:   newRecorder(),
		sink:  &memorySink{summaries: make(chan Summary, 4)},
		words: testWords(words),
	}
	h.reg = NewRegistry(settings, vocabulary.NewStore(h.words), h.out,
		WithClock(h.clock),
		WithTokens(fakeTokens{}),
		WithResultSink(h.sink),
		WithSeed(42),
		WithIDGenerator(func() string { return fmt.Sprintf("p%d", seq.Add(1)) }),
		WithLogger(zerolog.Nop()),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.reg.Close(ctx)
	})
	return h
}

// advance moves the clock and waits until the room has processed every
// wake-up that fired.
func (h *harness) advance(room *Room, d time.Duration) {
	h.clock.Advance(d)
	_, _ = room.Snapshot(context.Background())
}

func (h *harness) correctFor(t *testing.T, prompt string) string {
	t.Helper()
	for _, w := range h.words {
		if w.English == prompt {
			return w.Traditional
		}
	}
	t.Fatalf("no word with prompt %q", prompt)
	return ""
}

func (h *harness) wrongFor(t *testing.T, q NewQuestionPayload) string {
	t.Helper()
	correct := h.correctFor(t, q.Question)
	for _, o := range q.Options {
		if o.Traditional != correct {
			return o.Traditional
		}
	}
	t.Fatal("question has no wrong option")
	return ""
}

// lobbyOf creates a room hosted by Alice with the extra players joined,
// and returns it with the player ids keyed by connection.
func (h *harness) lobbyOf(t *testing.T, opts Options, others ...string) (*Room, map[string]string) {
	t.Helper()
	ctx := context.Background()
	ids := make(map[string]string)

	code, aliceID, err := h.reg.CreateRoom(ctx, "conn-alice", "Alice", opts)
	require.NoError(t, err)
	ids["conn-alice"] = aliceID

	for _, name := range others {
		conn := "conn-" + strings.ToLower(name)
		id, err := h.reg.JoinRoom(ctx, code, conn, name)
		require.NoError(t, err)
		ids[conn] = id
	}

	room, err := h.reg.Lookup(code)
	require.NoError(t, err)
	return room, ids
}

func (h *harness) snapshot(t *testing.T, room *Room) Snapshot {
	t.Helper()
	snap, err := room.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}
