package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Name         string    `json:"name"`
	EmailAddress string    `json:"email_address,omitempty"`
	Role         string    `json:"role,omitempty"`
	Photo        string    `json:"photo,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Author is the denormalized slice of a user attached to comment payloads.
type Author struct {
	Id    int    `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

type Event struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category,omitempty"`
	OrganizerId int       `json:"organizer_id"`
	Published   bool      `json:"published"`
	GoingCount  int       `json:"going_count"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Comment struct {
	Id        int       `json:"id"`
	EventId   string    `json:"event_id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type Rsvp struct {
	EventId   string    `json:"event_id"`
	UserId    int       `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Notification struct {
	Id             int       `json:"id"`
	Kind           string    `json:"kind"`
	Message        string    `json:"message"`
	RelatedEventId string    `json:"related_event_id,omitempty"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}
