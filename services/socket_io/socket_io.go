package socket_io

import (
	"context"
	"log"
	"sync"
	"time"

	redis_models "github.com/salmanshahriar/whos-fake/models/redis"
	"github.com/salmanshahriar/whos-fake/services/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

/*
 * SocketServer relays room change notifications to browser clients.
 * A client emits "join_room" with the room id it is watching; from
 * then on every event published on the room's Redis channel arrives as
 * a "room_update" or "players_update" emit. One Redis subscription is
 * shared per room and closed once the last watcher leaves.
 */
type SocketServer struct {
	Sio_server *socket.Server
	rc         *redis.RedisClient

	mutex  sync.Mutex
	relays map[uuid.UUID]*roomRelay
}

type roomRelay struct {
	cancel   context.CancelFunc
	watchers int
}

func NewSocketServer(rc *redis.RedisClient) *SocketServer {
	return &SocketServer{
		rc:     rc,
		relays: make(map[uuid.UUID]*roomRelay),
	}
}

func roomChannel(roomID uuid.UUID) socket.Room {
	return socket.Room("room:" + roomID.String())
}

// Start mounts the socket.io server on the gin router.
func (sio *SocketServer) Start(router *gin.Engine) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load
	// and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Rooms this particular connection is watching.
		watching := make(map[uuid.UUID]bool)
		var watchingMu sync.Mutex

		client.On("join_room", func(args ...interface{}) {
			raw, ok := args[0].(string)
			if !ok {
				client.Emit("error", gin.H{"error": "Invalid room id"})
				return
			}
			roomID, err := uuid.Parse(raw)
			if err != nil {
				client.Emit("error", gin.H{"error": "Invalid room id"})
				return
			}

			watchingMu.Lock()
			already := watching[roomID]
			watching[roomID] = true
			watchingMu.Unlock()

			client.Join(roomChannel(roomID))
			if !already {
				sio.retainRelay(roomID)
			}
			client.Emit("joined_room", gin.H{"room_id": roomID.String()})
		})

		client.On("leave_room", func(args ...interface{}) {
			raw, ok := args[0].(string)
			if !ok {
				return
			}
			roomID, err := uuid.Parse(raw)
			if err != nil {
				return
			}

			watchingMu.Lock()
			was := watching[roomID]
			delete(watching, roomID)
			watchingMu.Unlock()

			client.Leave(roomChannel(roomID))
			if was {
				sio.releaseRelay(roomID)
			}
		})

		client.On("disconnecting", func(args ...interface{}) {
			watchingMu.Lock()
			rooms := make([]uuid.UUID, 0, len(watching))
			for roomID := range watching {
				rooms = append(rooms, roomID)
			}
			watching = make(map[uuid.UUID]bool)
			watchingMu.Unlock()

			for _, roomID := range rooms {
				sio.releaseRelay(roomID)
			}
		})
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	log.Println("Socket server started")
}

// Close shuts the socket server and every relay down.
func (sio *SocketServer) Close() {
	sio.mutex.Lock()
	for roomID, relay := range sio.relays {
		relay.cancel()
		delete(sio.relays, roomID)
	}
	sio.mutex.Unlock()

	if sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}

// retainRelay makes sure one Redis subscription is forwarding the
// room's events into its socket.io channel.
func (sio *SocketServer) retainRelay(roomID uuid.UUID) {
	sio.mutex.Lock()
	defer sio.mutex.Unlock()

	if relay, ok := sio.relays[roomID]; ok {
		relay.watchers++
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	unsubscribe, err := sio.rc.SubscribeRoom(ctx, roomID, func(event *redis_models.RoomEvent) {
		sio.forward(roomID, event)
	})
	if err != nil {
		// Clients on this room fall back to their poll loop.
		log.Printf("Error subscribing relay for room %s: %v", roomID, err)
		cancel()
		return
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	sio.relays[roomID] = &roomRelay{cancel: cancel, watchers: 1}
}

func (sio *SocketServer) releaseRelay(roomID uuid.UUID) {
	sio.mutex.Lock()
	defer sio.mutex.Unlock()

	relay, ok := sio.relays[roomID]
	if !ok {
		return
	}
	relay.watchers--
	if relay.watchers <= 0 {
		relay.cancel()
		delete(sio.relays, roomID)
	}
}

func (sio *SocketServer) forward(roomID uuid.UUID, event *redis_models.RoomEvent) {
	var name string
	switch event.Table {
	case redis_models.TableRooms:
		name = "room_update"
	case redis_models.TablePlayers:
		name = "players_update"
	default:
		return
	}
	sio.Sio_server.To(roomChannel(roomID)).Emit(name, gin.H{
		"room_id": roomID.String(),
		"event":   event.Event,
		"payload": event.Payload,
	})
}
