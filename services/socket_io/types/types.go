package socketio_types

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
	"golang.org/x/time/rate"
)

// Seat is the room and player a connection currently plays as.
type Seat struct {
	RoomCode string
	PlayerID string
}

// SocketServer is a struct that contains the socket.io server and the
// per-connection bookkeeping: sockets, seats and event budgets, all keyed by
// socket id. It is the battle.Broadcaster of the registry.
type SocketServer struct {
	Sio_server *socket.Server

	connections map[string]*socket.Socket
	seats       map[string]Seat
	limiters    map[string]*rate.Limiter
	eventRate   rate.Limit
	eventBurst  int
	mutex       sync.RWMutex
}

// NewSocketServer creates the bookkeeping. A non-positive eventRate turns
// the per-socket limit off.
func NewSocketServer(eventRate float64, eventBurst int) *SocketServer {
	limit := rate.Limit(eventRate)
	if eventRate <= 0 {
		limit = rate.Inf
	}
	if eventBurst <= 0 {
		eventBurst = 1
	}
	return &SocketServer{
		connections: make(map[string]*socket.Socket),
		seats:       make(map[string]Seat),
		limiters:    make(map[string]*rate.Limiter),
		eventRate:   limit,
		eventBurst:  eventBurst,
	}
}

func (s *SocketServer) AddConnection(connID string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.connections[connID] = client
	s.limiters[connID] = rate.NewLimiter(s.eventRate, s.eventBurst)
}

// RemoveConnection forgets everything about connID and returns the seat it
// held, if any.
func (s *SocketServer) RemoveConnection(connID string) (Seat, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	seat, ok := s.seats[connID]
	delete(s.connections, connID)
	delete(s.seats, connID)
	delete(s.limiters, connID)
	return seat, ok
}

func (s *SocketServer) GetConnection(connID string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	client, exists := s.connections[connID]
	return client, exists
}

func (s *SocketServer) ConnectionCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.connections)
}

func (s *SocketServer) SetSeat(connID string, seat Seat) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.seats[connID] = seat
}

func (s *SocketServer) GetSeat(connID string) (Seat, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	seat, ok := s.seats[connID]
	return seat, ok
}

func (s *SocketServer) ClearSeat(connID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.seats, connID)
}

// Allow spends one event from the connection's budget. Connections that were
// never added or already removed have no budget.
func (s *SocketServer) Allow(connID string) bool {
	s.mutex.RLock()
	limiter, ok := s.limiters[connID]
	s.mutex.RUnlock()
	if !ok {
		return false
	}
	return limiter.Allow()
}

// Attach subscribes the connection to the room's broadcasts.
func (s *SocketServer) Attach(connID, roomCode string) {
	if client, ok := s.GetConnection(connID); ok {
		client.Join(socket.Room(roomCode))
	}
}

func (s *SocketServer) Detach(connID, roomCode string) {
	if client, ok := s.GetConnection(connID); ok {
		client.Leave(socket.Room(roomCode))
	}
}

func (s *SocketServer) ToConn(connID, event string, payload any) {
	client, ok := s.GetConnection(connID)
	if !ok {
		log.Debug().Str("socket", connID).Str("event", event).Msg("[EMIT] Connection gone, dropping event")
		return
	}
	if err := client.Emit(event, payload); err != nil {
		log.Warn().Err(err).Str("socket", connID).Str("event", event).Msg("[EMIT-ERROR] Could not emit")
	}
}

func (s *SocketServer) ToRoom(roomCode, event string, payload any) {
	if s.Sio_server == nil {
		return
	}
	if err := s.Sio_server.To(socket.Room(roomCode)).Emit(event, payload); err != nil {
		log.Warn().Err(err).Str("room", roomCode).Str("event", event).Msg("[EMIT-ERROR] Could not broadcast")
	}
}
