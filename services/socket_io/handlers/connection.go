package handlers

import (
	"context"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	socketio_types "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/types"
	socketio_utils "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/utils"

	"github.com/rs/zerolog/log"
)

// How long a handler waits for a room to accept its command.
const handlerTimeout = 5 * time.Second

const (
	EventJoinError    = "join_error"
	slowDownMessage   = "Slow down!"
	badPayloadMessage = "Invalid request."
)

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// allowed spends one event of the connection's budget and tells the client
// when it ran out.
func allowed(sio *socketio_types.SocketServer, client socketio_utils.Client, event string) bool {
	if sio.Allow(client.ID()) {
		return true
	}
	if _, ok := sio.GetConnection(client.ID()); !ok {
		log.Debug().Str("socket", client.ID()).Str("event", event).Msg("[EVENT] Connection gone, dropping event")
		return false
	}
	log.Warn().Str("socket", client.ID()).Str("event", event).Msg("[RATE-LIMIT] Event dropped")
	client.Emit(battle.EventError, battle.ErrorPayload{Message: slowDownMessage})
	return false
}

func decode(client socketio_utils.Client, event string, args []any, dst any) bool {
	if err := socketio_utils.DecodePayload(args, dst); err != nil {
		log.Warn().Err(err).Str("socket", client.ID()).Str("event", event).Msg("[PAYLOAD-ERROR] Bad payload")
		client.Emit(battle.EventError, battle.ErrorPayload{Message: badPayloadMessage})
		return false
	}
	return true
}

// Function to handle socket.io client disconnections. A player in a running
// battle keeps its seat for a later rejoin_room.
func HandleDisconnecting(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		connID := client.ID()
		seat, ok := sio.RemoveConnection(connID)
		if !ok {
			log.Debug().Str("socket", connID).Msg("[DISCONNECT] Connection held no seat")
			return
		}
		log.Info().Str("socket", connID).Str("room", seat.RoomCode).Str("player", seat.PlayerID).
			Msg("[DISCONNECT] Connection dropped")

		room, err := reg.Lookup(seat.RoomCode)
		if err != nil {
			return
		}
		ctx, cancel := handlerContext()
		defer cancel()
		if err := room.Disconnect(ctx, connID); err != nil {
			log.Warn().Err(err).Str("room", seat.RoomCode).Msg("[DISCONNECT-ERROR] Room did not take the disconnect")
		}
	}
}

// leaveCurrentSeat frees the seat a connection holds before it creates or
// joins another room.
func leaveCurrentSeat(ctx context.Context, reg *battle.Registry, sio *socketio_types.SocketServer, connID string) {
	seat, ok := sio.GetSeat(connID)
	if !ok {
		return
	}
	sio.ClearSeat(connID)
	room, err := reg.Lookup(seat.RoomCode)
	if err != nil {
		return
	}
	if err := room.Leave(ctx, connID, seat.PlayerID); err != nil {
		log.Debug().Err(err).Str("room", seat.RoomCode).Msg("[LEAVE] Previous seat already gone")
	}
}
