package handlers

import (
	"context"

	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	socketio_types "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/types"
	socketio_utils "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/utils"

	"github.com/rs/zerolog/log"
)

type SubmitAnswerRequest struct {
	SeatRequest
	Answer string `json:"answer"`
}

type seatCarrier interface {
	seat() SeatRequest
}

func (r *SeatRequest) seat() SeatRequest { return *r }

// roomCommand decodes a fresh request, resolves the room and runs action on
// it. Failures go back to the caller as an error event.
func roomCommand[R any, P interface {
	*R
	seatCarrier
}](reg *battle.Registry, sio *socketio_types.SocketServer, client socketio_utils.Client, event string,
	action func(ctx context.Context, room *battle.Room, seat socketio_types.Seat, req P) error) func(args ...interface{}) {
	return func(args ...interface{}) {
		if !allowed(sio, client, event) {
			return
		}
		req := P(new(R))
		if !decode(client, event, args, req) {
			return
		}
		claimed := req.seat()
		room, seat, err := socketio_utils.ResolveSeat(reg, sio, client.ID(), claimed.RoomCode, claimed.PlayerID)
		if err != nil {
			log.Warn().Err(err).Str("socket", client.ID()).Str("event", event).Msg("[EVENT-ERROR] No room for event")
			socketio_utils.EmitError(client, battle.EventError, err)
			return
		}

		ctx, cancel := handlerContext()
		defer cancel()
		if err := action(ctx, room, seat, req); err != nil {
			log.Info().Err(err).Str("socket", client.ID()).Str("room", seat.RoomCode).Str("event", event).
				Msg("[EVENT-REJECTED] Room rejected event")
			socketio_utils.EmitError(client, battle.EventError, err)
		}
	}
}

func HandleStartBattle(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return roomCommand[SeatRequest](reg, sio, client, "start_battle",
		func(ctx context.Context, room *battle.Room, _ socketio_types.Seat, _ *SeatRequest) error {
			return room.Start(ctx, client.ID())
		})
}

func HandleRequestQuestion(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return roomCommand[SeatRequest](reg, sio, client, "request_question",
		func(ctx context.Context, room *battle.Room, _ socketio_types.Seat, _ *SeatRequest) error {
			return room.RequestQuestion(ctx, client.ID())
		})
}

func HandleSubmitAnswer(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return roomCommand[SubmitAnswerRequest](reg, sio, client, "submit_answer",
		func(ctx context.Context, room *battle.Room, seat socketio_types.Seat, req *SubmitAnswerRequest) error {
			return room.SubmitAnswer(ctx, client.ID(), seat.PlayerID, req.Answer)
		})
}

func HandleTimeUp(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return roomCommand[SeatRequest](reg, sio, client, "time_up",
		func(ctx context.Context, room *battle.Room, _ socketio_types.Seat, _ *SeatRequest) error {
			return room.TimeUp(ctx, client.ID())
		})
}

func HandleNextQuestion(reg *battle.Registry, sio *socketio_types.SocketServer,
	client socketio_utils.Client) func(args ...interface{}) {
	return roomCommand[SeatRequest](reg, sio, client, "next_question",
		func(ctx context.Context, room *battle.Room, _ socketio_types.Seat, _ *SeatRequest) error {
			return room.NextQuestion(ctx, client.ID())
		})
}
