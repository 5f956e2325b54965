package handlers

import (
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	socketio_types "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/types"
	socketio_utils "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/utils"

	"github.com/rs/zerolog/log"
)

type CreateRoomRequest struct {
	Name     string `json:"name"`
	Rounds   int    `json:"rounds"`
	Lesson   int    `json:"lesson"`
	Category string `json:"category"`
}

type JoinRoomRequest struct {
	Name     string `json:"name"`
	RoomCode string `json:"room_code"`
}

type RejoinRoomRequest struct {
	RoomCode    string `json:"room_code"`
	PlayerID    string `json:"player_id"`
	RejoinToken string `json:"rejoin_token"`
}

// SeatRequest is what every in-room event carries. The gateway's own record
// of the seat is preferred when it has one.
type SeatRequest struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

func HandleCreateRoom(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !allowed(sio, client, "create_room") {
			return
		}
		var req CreateRoomRequest
		if !decode(client, "create_room", args, &req) {
			return
		}
		log.Info().Str("socket", client.ID()).Str("name", req.Name).Msg("[CREATE] create_room received")

		ctx, cancel := handlerContext()
		defer cancel()
		leaveCurrentSeat(ctx, reg, sio, client.ID())

		code, playerID, err := reg.CreateRoom(ctx, client.ID(), req.Name, battle.Options{
			Rounds:   req.Rounds,
			Lesson:   req.Lesson,
			Category: req.Category,
		})
		if err != nil {
			log.Warn().Err(err).Str("socket", client.ID()).Msg("[CREATE-ERROR] Could not create room")
			socketio_utils.EmitError(client, EventJoinError, err)
			return
		}
		sio.SetSeat(client.ID(), socketio_types.Seat{RoomCode: code, PlayerID: playerID})
	}
}

func HandleJoinRoom(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !allowed(sio, client, "join_room") {
			return
		}
		var req JoinRoomRequest
		if !decode(client, "join_room", args, &req) {
			return
		}
		code := battle.NormalizeCode(req.RoomCode)
		log.Info().Str("socket", client.ID()).Str("room", code).Str("name", req.Name).Msg("[JOIN] join_room received")

		ctx, cancel := handlerContext()
		defer cancel()
		if seat, ok := sio.GetSeat(client.ID()); ok && seat.RoomCode != code {
			leaveCurrentSeat(ctx, reg, sio, client.ID())
		}

		playerID, err := reg.JoinRoom(ctx, code, client.ID(), req.Name)
		if err != nil {
			log.Warn().Err(err).Str("socket", client.ID()).Str("room", code).Msg("[JOIN-ERROR] Could not join")
			socketio_utils.EmitError(client, EventJoinError, err)
			return
		}
		sio.SetSeat(client.ID(), socketio_types.Seat{RoomCode: code, PlayerID: playerID})
	}
}

func HandleRejoinRoom(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !allowed(sio, client, "rejoin_room") {
			return
		}
		var req RejoinRoomRequest
		if !decode(client, "rejoin_room", args, &req) {
			return
		}
		code := battle.NormalizeCode(req.RoomCode)

		ctx, cancel := handlerContext()
		defer cancel()
		if seat, ok := sio.GetSeat(client.ID()); ok && (seat.RoomCode != code || seat.PlayerID != req.PlayerID) {
			leaveCurrentSeat(ctx, reg, sio, client.ID())
		}

		if err := reg.Rejoin(ctx, client.ID(), code, req.PlayerID, req.RejoinToken); err != nil {
			log.Warn().Err(err).Str("socket", client.ID()).Str("room", code).Msg("[REJOIN-ERROR] Could not rejoin")
			socketio_utils.EmitError(client, EventJoinError, err)
			return
		}
		sio.SetSeat(client.ID(), socketio_types.Seat{RoomCode: code, PlayerID: req.PlayerID})
	}
}

func HandleLeaveBattle(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !allowed(sio, client, "leave_battle") {
			return
		}
		var req SeatRequest
		if !decode(client, "leave_battle", args, &req) {
			return
		}
		room, seat, err := socketio_utils.ResolveSeat(reg, sio, client.ID(), req.RoomCode, req.PlayerID)
		if err != nil {
			sio.ClearSeat(client.ID())
			return
		}

		ctx, cancel := handlerContext()
		defer cancel()
		if err := room.Leave(ctx, client.ID(), seat.PlayerID); err != nil {
			log.Debug().Err(err).Str("room", seat.RoomCode).Msg("[LEAVE] Nothing to leave")
		}
		sio.ClearSeat(client.ID())
		log.Info().Str("socket", client.ID()).Str("room", seat.RoomCode).Msg("[LEAVE] Player left")
	}
}
