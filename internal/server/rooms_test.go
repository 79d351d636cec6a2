package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "global", GlobalRoom)
	assert.Equal(t, "event:abc123", EventRoom("abc123"))
	assert.Equal(t, "user:42", UserRoom(42))
}

func TestRegistryJoin(t *testing.T) {
	r := newRegistry()
	c := &Client{}

	r.join(c, EventRoom("e1"))
	assert.Equal(t, 1, r.roomCount(), "expected room to be created on first join")
	assert.Contains(t, r.membersOf(EventRoom("e1")), c, "expected client to be a member")

	// joining again is a no-op
	r.join(c, EventRoom("e1"))
	assert.Len(t, r.membersOf(EventRoom("e1")), 1, "expected repeated join to be idempotent")
}

func TestRegistryRoomIsolation(t *testing.T) {
	r := newRegistry()
	c1 := &Client{}
	c2 := &Client{}

	r.join(c1, EventRoom("e1"))
	r.join(c2, EventRoom("e2"))

	assert.NotContains(t, r.membersOf(EventRoom("e1")), c2, "expected no membership leak between rooms")
	assert.NotContains(t, r.membersOf(EventRoom("e2")), c1, "expected no membership leak between rooms")
}

func TestRegistryLeave(t *testing.T) {
	r := newRegistry()
	c1 := &Client{}
	c2 := &Client{}

	r.join(c1, EventRoom("e1"))
	r.join(c2, EventRoom("e1"))

	r.leave(c1, EventRoom("e1"))
	assert.NotContains(t, r.membersOf(EventRoom("e1")), c1, "expected client to be removed")
	assert.Contains(t, r.membersOf(EventRoom("e1")), c2, "expected other member to remain")

	// leaving a room the client is not in is a no-op
	r.leave(c1, EventRoom("e1"))
	assert.Equal(t, 1, r.roomCount())

	r.leave(c2, EventRoom("e1"))
	assert.Zero(t, r.roomCount(), "expected emptied room to be dropped")
	assert.Nil(t, r.membersOf(EventRoom("e1")), "expected no member set for dropped room")
}

func TestRegistryLeaveUnknownRoom(t *testing.T) {
	r := newRegistry()
	c := &Client{}

	r.leave(c, EventRoom("nope"))
	assert.Zero(t, r.roomCount())
}

func TestRegistryLeaveAll(t *testing.T) {
	r := newRegistry()
	c1 := &Client{}
	c2 := &Client{}

	r.join(c1, GlobalRoom)
	r.join(c1, EventRoom("e1"))
	r.join(c1, UserRoom(1))
	r.join(c2, GlobalRoom)

	r.leaveAll(c1)

	assert.Equal(t, 1, r.roomCount(), "expected only the global room to survive")
	assert.Contains(t, r.membersOf(GlobalRoom), c2, "expected other client to keep its membership")
	assert.Empty(t, r.memberships[c1], "expected no memberships left for removed client")
}
