package server

import "strconv"

// GlobalRoom receives site-wide broadcasts such as new-event. Every
// connection is a member for its whole lifetime.
const GlobalRoom = "global"

// EventRoom returns the broadcast scope for an event. Room names are
// prefixed so an event id can never collide with a user id.
func EventRoom(eventId string) string {
	return "event:" + eventId
}

// UserRoom returns the private broadcast scope for a user.
func UserRoom(userId int) string {
	return "user:" + strconv.Itoa(userId)
}

// registry tracks which client belongs to which room. It is owned by the
// EventServer run loop and must only be touched from that goroutine, which
// is what makes membersOf a point-in-time view without locking.
type registry struct {
	rooms       map[string]map[*Client]struct{}
	memberships map[*Client]map[string]struct{}
}

func newRegistry() *registry {
	return &registry{
		rooms:       make(map[string]map[*Client]struct{}),
		memberships: make(map[*Client]map[string]struct{}),
	}
}

// join adds c to room, creating the room on first join. Joining a room the
// client is already in has no effect.
func (r *registry) join(c *Client, room string) {
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[*Client]struct{})
	}
	r.rooms[room][c] = struct{}{}

	if r.memberships[c] == nil {
		r.memberships[c] = make(map[string]struct{})
	}
	r.memberships[c][room] = struct{}{}
}

// leave removes c from room. Leaving a room the client is not in is a
// no-op. An emptied room is dropped from the registry.
func (r *registry) leave(c *Client, room string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}

	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}

	if rooms, ok := r.memberships[c]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.memberships, c)
		}
	}
}

// leaveAll removes c from every room it is a member of.
func (r *registry) leaveAll(c *Client) {
	for room := range r.memberships[c] {
		members := r.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.memberships, c)
}

// membersOf returns the current member set of a room, nil when the room
// has no members. The returned map is live, not a snapshot copy.
func (r *registry) membersOf(room string) map[*Client]struct{} {
	return r.rooms[room]
}

func (r *registry) roomCount() int {
	return len(r.rooms)
}
