package server

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unievents/unievents/internal/stats"
	"github.com/unievents/unievents/internal/testutil"
	"github.com/unievents/unievents/internal/types"
)

// newTestEventServer creates an EventServer for testing purposes
func newTestEventServer(t *testing.T) *EventServer {
	logger := testutil.TestLogger(t)
	es, err := NewEventServer(logger, &stats.MockStatsUpdater{})
	if err != nil {
		t.Fatalf("failed to create test EventServer: %v", err)
	}
	return es
}

// newTestClient returns a client with a buffered send channel and no
// underlying connection, enough for exercising the hub loop.
func newTestClient(user types.User, es *EventServer, l *log.Logger) *Client {
	return &Client{
		server: es,
		log:    l,
		user:   user,
		send:   make(chan *ServerMessage, 256),
		stop:   make(chan struct{}),
	}
}

func TestNewEventServer(t *testing.T) {
	logger := testutil.TestLogger(t)
	es, err := NewEventServer(logger, &stats.MockStatsUpdater{})
	assert.NoError(t, err, "expected no error creating EventServer")
	assert.NotNil(t, es, "expected EventServer to be non-nil")
	assert.Equal(t, logger, es.log, "expected logger to be set")
	assert.NotNil(t, es.registry, "expected registry to be initialized")
	assert.NotNil(t, es.clients, "expected clients map to be initialized")
	assert.NotNil(t, es.RegisterChan, "expected RegisterChan to be initialized")
	assert.NotNil(t, es.deRegisterChan, "expected deRegisterChan to be initialized")
	assert.NotNil(t, es.joinChan, "expected joinChan to be initialized")
	assert.NotNil(t, es.leaveChan, "expected leaveChan to be initialized")
	assert.NotNil(t, es.emitChan, "expected emitChan to be initialized")
	assert.NotNil(t, es.stop, "expected stop channel to be initialized")
}

func TestEventServer_handleRegister(t *testing.T) {
	es := newTestEventServer(t)
	c := newTestClient(types.User{Id: 7}, es, es.log)

	es.handleRegister(c)

	assert.Contains(t, es.clients, c, "expected client to be tracked")
	assert.Contains(t, es.registry.membersOf(GlobalRoom), c, "expected client in the global room")
	assert.Contains(t, es.registry.membersOf(UserRoom(7)), c, "expected client in its own user room")
	assert.NotContains(t, es.registry.rooms, UserRoom(8), "expected no other user rooms")
}

func TestEventServer_handleDeregister(t *testing.T) {
	es := newTestEventServer(t)
	c := newTestClient(types.User{Id: 7}, es, es.log)

	es.handleRegister(c)
	es.handleJoin(joinReq{client: c, room: EventRoom("e1")})

	es.handleDeregister(c)

	assert.NotContains(t, es.clients, c, "expected client to be removed")
	assert.Zero(t, es.registry.roomCount(), "expected all rooms emptied and dropped")

	// deregistering an unknown client is a no-op
	es.handleDeregister(c)
}

func TestEventServer_handleJoinLeaveAck(t *testing.T) {
	es := newTestEventServer(t)
	c := newTestClient(types.User{Id: 1}, es, es.log)

	es.handleJoin(joinReq{client: c, room: EventRoom("e1"), id: 3})

	select {
	case msg := <-c.send:
		assert.Equal(t, 3, msg.Id, "expected ack to carry the command id")
		assert.NotNil(t, msg.Response, "expected a response frame")
		assert.Equal(t, 200, msg.Response.ResponseCode)
	default:
		t.Fatal("expected join ack on send channel")
	}

	es.handleLeave(joinReq{client: c, room: EventRoom("e1"), id: 4})

	select {
	case msg := <-c.send:
		assert.Equal(t, 4, msg.Id, "expected ack to carry the command id")
	default:
		t.Fatal("expected leave ack on send channel")
	}

	// joins without an id are not acked
	es.handleJoin(joinReq{client: c, room: EventRoom("e2")})
	assert.Empty(t, c.send, "expected no ack for id-less join")
}

func TestEventServer_handleEmit(t *testing.T) {
	es := newTestEventServer(t)
	c1 := newTestClient(types.User{Id: 1}, es, es.log)
	c2 := newTestClient(types.User{Id: 2}, es, es.log)
	c3 := newTestClient(types.User{Id: 3}, es, es.log)

	es.handleJoin(joinReq{client: c1, room: EventRoom("e1")})
	es.handleJoin(joinReq{client: c2, room: EventRoom("e1")})
	es.handleJoin(joinReq{client: c3, room: EventRoom("e2")})

	es.handleEmit(emitReq{room: EventRoom("e1"), event: NewCommentEvent, payload: "hello"})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, NewCommentEvent, msg.Event, "expected broadcast event tag")
			assert.Equal(t, "hello", msg.Payload, "expected broadcast payload")
			assert.False(t, msg.Timestamp.IsZero(), "expected timestamp to be set")
		default:
			t.Fatal("expected message for room member")
		}
	}

	assert.Empty(t, c3.send, "expected no delivery outside the room")
}

func TestEventServer_handleEmitEmptyRoom(t *testing.T) {
	es := newTestEventServer(t)

	// emitting into a room nobody joined must not fail or create state
	es.handleEmit(emitReq{room: EventRoom("ghost"), event: NewCommentEvent, payload: "hello"})
	assert.Zero(t, es.registry.roomCount(), "expected no room to be created by emit")
}

func TestEventServer_handleEmitOrder(t *testing.T) {
	es := newTestEventServer(t)
	c := newTestClient(types.User{Id: 1}, es, es.log)
	es.handleJoin(joinReq{client: c, room: EventRoom("e1")})

	for i := 0; i < 5; i++ {
		es.handleEmit(emitReq{room: EventRoom("e1"), event: NewCommentEvent, payload: i})
	}

	for i := 0; i < 5; i++ {
		msg := <-c.send
		assert.Equal(t, i, msg.Payload, "expected per-room FIFO delivery")
	}
}

func TestEventServer_handleEmitFullBuffer(t *testing.T) {
	es := newTestEventServer(t)
	c := newTestClient(types.User{Id: 1}, es, es.log)
	c.send = make(chan *ServerMessage, 1)
	es.handleJoin(joinReq{client: c, room: EventRoom("e1")})

	es.handleEmit(emitReq{room: EventRoom("e1"), event: NewCommentEvent, payload: "first"})
	// second delivery is dropped, not blocked on
	es.handleEmit(emitReq{room: EventRoom("e1"), event: NewCommentEvent, payload: "second"})

	msg := <-c.send
	assert.Equal(t, "first", msg.Payload)
	assert.Empty(t, c.send, "expected overflow message to be dropped")
}

func TestEventServer_Emit(t *testing.T) {
	es := newTestEventServer(t)
	go es.Run()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, es.Shutdown(ctx))
	}()

	c := newTestClient(types.User{Id: 1}, es, es.log)
	es.RegisterChan <- c
	es.joinChan <- joinReq{client: c, room: EventRoom("e1"), id: 1}

	// wait for the join ack so the emit is ordered after the join
	select {
	case msg := <-c.send:
		assert.NotNil(t, msg.Response)
	case <-time.After(time.Second):
		t.Fatal("expected join ack")
	}

	es.Emit(EventRoom("e1"), RsvpUpdatedEvent, "payload")

	select {
	case msg := <-c.send:
		assert.Equal(t, RsvpUpdatedEvent, msg.Event)
		assert.Equal(t, "payload", msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast to be delivered")
	}
}

func TestEventServerShutdown(t *testing.T) {
	t.Run("successful shutdown", func(t *testing.T) {
		es := newTestEventServer(t)
		go es.Run()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := es.Shutdown(ctx)
		assert.NoError(t, err, "expected successful shutdown without error")
	})

	t.Run("fails with context deadline exceeded", func(t *testing.T) {
		es := newTestEventServer(t)
		// Run loop never started, so done is never closed

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := es.Shutdown(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "expected context deadline exceeded error, got %v", err)
	})

	t.Run("stops registered clients", func(t *testing.T) {
		es := newTestEventServer(t)
		go es.Run()

		c := newTestClient(types.User{Id: 1}, es, es.log)
		es.RegisterChan <- c

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, es.Shutdown(ctx))

		select {
		case <-c.stop:
		default:
			t.Error("expected client stop channel to be closed")
		}
	})
}
