package socket_io

import (
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/handlers"
	socketio_types "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/types"
	socketio_utils "github.com/nicolasvargaszz/learn-chinese-game/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	eio_log "github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// New prepares the gateway. eventRate and eventBurst bound how many events
// one connection may send per second.
func New(eventRate float64, eventBurst int) *MySocketServer {
	return (*MySocketServer)(socketio_types.NewSocketServer(eventRate, eventBurst))
}

// Broadcaster is the view of the server the battle registry emits through.
func (sio *MySocketServer) Broadcaster() battle.Broadcaster {
	return (*socketio_types.SocketServer)(sio)
}

// Start creates the socket.io server, registers the battle events and
// mounts it on the router.
func (sio *MySocketServer) Start(router *gin.Engine, reg *battle.Registry, prod bool) {
	eio_log.DEBUG = !prod
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := (*socketio_types.SocketServer)(sio)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		s := clients[0].(*socket.Socket)
		client := socketio_utils.SocketClient{Socket: s}

		server.AddConnection(client.ID(), s)
		log.Info().Str("socket", client.ID()).Int("connections", server.ConnectionCount()).
			Msg("[CONNECT] An individual just connected")

		// Lobby
		s.On("create_room", handlers.HandleCreateRoom(reg, server, client))
		s.On("join_room", handlers.HandleJoinRoom(reg, server, client))
		s.On("rejoin_room", handlers.HandleRejoinRoom(reg, server, client))
		s.On("leave_battle", handlers.HandleLeaveBattle(reg, server, client))

		// Battle flow
		s.On("start_battle", handlers.HandleStartBattle(reg, server, client))
		s.On("request_question", handlers.HandleRequestQuestion(reg, server, client))
		s.On("submit_answer", handlers.HandleSubmitAnswer(reg, server, client))
		s.On("time_up", handlers.HandleTimeUp(reg, server, client))
		s.On("next_question", handlers.HandleNextQuestion(reg, server, client))

		// NOTE: will remove sio connection from map
		s.On("disconnecting", handlers.HandleDisconnecting(reg, server, client))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	log.Info().Msg("Socket server started")
}

// Stop closes every connection. Rooms are torn down by the registry.
func (sio *MySocketServer) Stop() {
	if sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}
