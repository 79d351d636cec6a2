package server

import (
	"net/http"
	"time"
)

// Broadcast event tags. These names are part of the wire contract with the
// frontend and must not change without a client release.
const (
	NewCommentEvent      = "new-comment"
	DeleteCommentEvent   = "delete-comment"
	RsvpUpdatedEvent     = "rsvp-updated"
	NewNotificationEvent = "new-notification"
	NewEventEvent        = "new-event"
)

// ClientMessage is a command sent by a connected client. Exactly one of
// the operation fields is set. User rooms are never joined this way; the
// hub derives them from the authenticated session at register time.
type ClientMessage struct {
	Id     int     `json:"id,omitempty"`
	Join   *Join   `json:"join,omitempty"`
	Leave  *Leave  `json:"leave,omitempty"`
	client *Client `json:"-"`
}

type Join struct {
	EventId string `json:"event_id"`
}

type Leave struct {
	EventId string `json:"event_id"`
}

// ServerMessage is the frame written to clients: either a broadcast
// (Event + Payload) or a direct response to a client command.
type ServerMessage struct {
	Id        int       `json:"id,omitempty"`
	Event     string    `json:"event,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Response  *Response `json:"response,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

func NoErrOK(id int) *ServerMessage {
	return &ServerMessage{
		Id:        id,
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusOK,
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		Id:        id,
		Timestamp: Now(),
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
