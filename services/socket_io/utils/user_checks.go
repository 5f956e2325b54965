package socketio_utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	socketio_types "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/types"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

var ErrBadPayload = errors.New("malformed event payload")

// Client is the part of a socket.io connection the handlers talk to.
type Client interface {
	ID() string
	Emit(event string, payload any)
}

type SocketClient struct {
	*socket.Socket
}

func (c SocketClient) ID() string {
	return string(c.Socket.Id())
}

func (c SocketClient) Emit(event string, payload any) {
	if err := c.Socket.Emit(event, payload); err != nil {
		log.Warn().Err(err).Str("socket", c.ID()).Str("event", event).Msg("[EMIT-ERROR] Could not emit")
	}
}

// DecodePayload copies the first event argument into dst. Clients send
// either an object or its JSON text; numbers sent as strings are accepted.
// A missing argument leaves dst untouched.
func DecodePayload(args []any, dst any) error {
	if len(args) == 0 || args[0] == nil {
		return nil
	}
	input := args[0]
	if text, ok := input.(string); ok {
		var m map[string]any
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		input = m
	}
	if _, ok := input.(map[string]any); !ok {
		return fmt.Errorf("%w: got %T", ErrBadPayload, input)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// ResolveSeat finds the room and player a connection acts as. The seat the
// gateway recorded wins over whatever the client claims.
func ResolveSeat(reg *battle.Registry, sio *socketio_types.SocketServer, connID, roomCode, playerID string) (*battle.Room, socketio_types.Seat, error) {
	seat, ok := sio.GetSeat(connID)
	if !ok {
		if roomCode == "" {
			return nil, seat, battle.ErrPlayerNotFound
		}
		seat = socketio_types.Seat{RoomCode: battle.NormalizeCode(roomCode), PlayerID: playerID}
	}
	room, err := reg.Lookup(seat.RoomCode)
	if err != nil {
		return nil, seat, err
	}
	return room, seat, nil
}

// EmitError reports err to the originating client only.
func EmitError(client Client, event string, err error) {
	client.Emit(event, battle.ErrorPayload{Message: battle.Message(err)})
}
