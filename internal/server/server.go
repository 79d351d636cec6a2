package server

import (
	"context"
	"log"

	"github.com/unievents/unievents/internal/stats"
)

// Broadcaster delivers a payload to every connection currently joined to a
// room. Implementations are fire-and-forget: no acknowledgment, no retry,
// no persistence, and emitting into an empty room is a silent no-op.
type Broadcaster interface {
	Emit(room, event string, payload any)
}

// NopBroadcaster discards every emit. Services fall back to it when no hub
// is wired up, so a mutation's success never depends on a listener.
type NopBroadcaster struct{}

func (NopBroadcaster) Emit(room, event string, payload any) {}

type emitReq struct {
	room    string
	event   string
	payload any
}

type joinReq struct {
	client *Client
	room   string
	id     int
}

// EventServer is the realtime hub: it owns the room registry and
// serializes every membership change and broadcast through one run loop,
// which gives per-room FIFO delivery without locks.
type EventServer struct {
	log            *log.Logger
	stats          stats.StatsProvider
	registry       *registry
	clients        map[*Client]struct{}
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	joinChan       chan joinReq
	leaveChan      chan joinReq
	emitChan       chan emitReq
	stop           chan struct{}
	done           chan struct{}
}

func NewEventServer(logger *log.Logger, sp stats.StatsProvider) (*EventServer, error) {
	es := &EventServer{
		log:            logger,
		stats:          sp,
		registry:       newRegistry(),
		clients:        make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		joinChan:       make(chan joinReq, 256),
		leaveChan:      make(chan joinReq, 256),
		emitChan:       make(chan emitReq, 512),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	sp.RegisterMetric(stats.ActiveConnections)
	sp.RegisterMetric(stats.ActiveRooms)
	sp.RegisterMetric(stats.MessagesBroadcast)

	return es, nil
}

func (es *EventServer) Run() {
	for {
		select {
		case c := <-es.RegisterChan:
			es.handleRegister(c)
		case c := <-es.deRegisterChan:
			es.handleDeregister(c)
		case req := <-es.joinChan:
			es.handleJoin(req)
		case req := <-es.leaveChan:
			es.handleLeave(req)
		case req := <-es.emitChan:
			es.handleEmit(req)
		case <-es.stop:
			es.log.Println("stopping connections")
			for c := range es.clients {
				es.registry.leaveAll(c)
				c.stopClient()
			}

			close(es.done)
			return
		}
	}
}

func (es *EventServer) handleRegister(c *Client) {
	es.log.Printf("registering connection %s for user %d", c.id, c.user.Id)
	es.clients[c] = struct{}{}

	// every connection belongs to the global room and its session user's
	// private room; the user room is never joinable by client message
	before := es.registry.roomCount()
	es.registry.join(c, GlobalRoom)
	es.registry.join(c, UserRoom(c.user.Id))
	es.stats.Add(stats.ActiveRooms, es.registry.roomCount()-before)
	es.stats.Incr(stats.ActiveConnections)
}

func (es *EventServer) handleDeregister(c *Client) {
	if _, ok := es.clients[c]; !ok {
		return
	}

	es.log.Printf("removing connection %s for user %d", c.id, c.user.Id)
	before := es.registry.roomCount()
	es.registry.leaveAll(c)
	delete(es.clients, c)
	es.stats.Add(stats.ActiveRooms, es.registry.roomCount()-before)
	es.stats.Decr(stats.ActiveConnections)
}

func (es *EventServer) handleJoin(req joinReq) {
	before := es.registry.roomCount()
	es.registry.join(req.client, req.room)
	es.stats.Add(stats.ActiveRooms, es.registry.roomCount()-before)

	if req.id > 0 {
		req.client.queueMessage(NoErrOK(req.id))
	}
}

func (es *EventServer) handleLeave(req joinReq) {
	before := es.registry.roomCount()
	es.registry.leave(req.client, req.room)
	es.stats.Add(stats.ActiveRooms, es.registry.roomCount()-before)

	if req.id > 0 {
		req.client.queueMessage(NoErrOK(req.id))
	}
}

func (es *EventServer) handleEmit(req emitReq) {
	members := es.registry.membersOf(req.room)
	if len(members) == 0 {
		return
	}

	msg := &ServerMessage{
		Event:     req.event,
		Payload:   req.payload,
		Timestamp: Now(),
	}

	for c := range members {
		// queueMessage drops on a full buffer rather than blocking the
		// dispatch loop; a slow consumer loses messages, not the room
		c.queueMessage(msg)
	}

	es.stats.Incr(stats.MessagesBroadcast)
}

// Emit queues a broadcast to every current member of room. It never
// blocks: when the dispatch queue is full the message is dropped.
func (es *EventServer) Emit(room, event string, payload any) {
	select {
	case es.emitChan <- emitReq{room: room, event: event, payload: payload}:
	case <-es.done:
	default:
		es.log.Printf("emit queue full, dropping %q for room %q", event, room)
	}
}

func (es *EventServer) RegisterClient(c *Client) {
	es.RegisterChan <- c
	go c.Write()
	go c.Read()
}

func (es *EventServer) Shutdown(ctx context.Context) error {
	close(es.stop)

	select {
	case <-es.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
