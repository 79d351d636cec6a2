// Package rsvp owns the per-user per-event attendance records and is the
// source of truth for an event's going count.
package rsvp

import (
	"errors"
	"fmt"
	"log"

	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/server"
)

// Statuses the frontend is known to send. The column is an open string
// set; these are not validated as an enum.
const (
	StatusSaved      = "saved"
	StatusGoing      = "going"
	StatusInterested = "interested"
)

// ErrAlreadySaved is returned by CreateSave when an RSVP record already
// exists for the (user, event) pair.
var ErrAlreadySaved = errors.New("already saved")

// Update is the rsvp-updated broadcast payload.
type Update struct {
	EventId string `json:"event_id"`
	UserId  int    `json:"user_id"`
	Status  string `json:"status"`
}

type Ledger struct {
	log *log.Logger
	db  database.UniEventsRepository
	bc  server.Broadcaster
}

func NewLedger(logger *log.Logger, db database.UniEventsRepository, bc server.Broadcaster) *Ledger {
	if bc == nil {
		bc = server.NopBroadcaster{}
	}

	return &Ledger{log: logger, db: db, bc: bc}
}

// Toggle creates the RSVP record for (userId, event) or updates its status
// when one already exists. The upsert happens in a single storage-level
// statement against the table's unique constraint, so concurrent toggles
// for the same pair can never produce two rows. On success an
// rsvp-updated broadcast goes to the event's room.
func (l *Ledger) Toggle(userId int, event database.Event, status string) (database.Rsvp, error) {
	if status == "" {
		status = StatusGoing
	}

	record, err := l.db.UpsertRsvp(userId, event.Id, status)
	if err != nil {
		return database.Rsvp{}, fmt.Errorf("upsert rsvp: %w", err)
	}

	l.bc.Emit(server.EventRoom(event.ExternalId), server.RsvpUpdatedEvent, Update{
		EventId: event.ExternalId,
		UserId:  userId,
		Status:  record.Status,
	})

	return record, nil
}

// CreateSave is the insert-only bookmark flow. Unlike Toggle it does not
// update on conflict: a duplicate surfaces ErrAlreadySaved so the client
// can show "already saved" instead of silently succeeding.
func (l *Ledger) CreateSave(userId int, event database.Event) (database.Rsvp, error) {
	record, err := l.db.CreateRsvp(userId, event.Id, StatusSaved)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return database.Rsvp{}, ErrAlreadySaved
		}
		return database.Rsvp{}, fmt.Errorf("create rsvp: %w", err)
	}

	return record, nil
}

// Remove deletes the record for (userId, event). Removing a record that
// does not exist is not an error.
func (l *Ledger) Remove(userId int, event database.Event) error {
	if err := l.db.DeleteRsvp(userId, event.Id); err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}

	return nil
}

// ListForUser returns the user's RSVP records, optionally filtered to a
// status subset.
func (l *Ledger) ListForUser(userId int, statuses ...string) ([]database.Rsvp, error) {
	return l.db.ListRsvpsByUser(userId, statuses)
}

// CountGoing is computed fresh on every call. Only records with status
// "going" count; saved and interested records do not.
func (l *Ledger) CountGoing(eventId int) (int, error) {
	return l.db.CountGoing(eventId)
}
