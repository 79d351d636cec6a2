package database

import "time"

type User struct {
	Id           int
	Name         string
	EmailAddress string
	PasswordHash string
	Role         string
	Photo        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Event struct {
	Id          int
	ExternalId  string
	Title       string
	Description string
	Date        time.Time
	Location    string
	Category    string
	OrganizerId int
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Rsvp struct {
	Id     int
	UserId int
	// EventId is the internal key; EventExternalId is only populated by
	// list queries that join the events table.
	EventId         int
	EventExternalId string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Comment struct {
	Id        int
	EventId   int
	UserId    int
	Text      string
	CreatedAt time.Time
}

// CommentWithAuthor is a comment row joined with its author's display
// fields and the owning event's external id.
type CommentWithAuthor struct {
	Comment
	EventExternalId string
	AuthorName      string
	AuthorPhoto     string
}

type Notification struct {
	Id              int
	RecipientId     int
	Kind            string
	Message         string
	RelatedEventId  int
	RelatedExternal string
	Read            bool
	CreatedAt       time.Time
}

type CreateAccountParams struct {
	Name         string
	EmailAddress string
	PasswordHash string
	Role         string
}

type CreateEventParams struct {
	ExternalId  string
	Title       string
	Description string
	Date        time.Time
	Location    string
	Category    string
	OrganizerId int
	Published   bool
}

type CreateNotificationParams struct {
	RecipientId    int
	Kind           string
	Message        string
	RelatedEventId int
}
