// Package notification persists per-user notifications and pushes them to
// each recipient's private room.
package notification

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/server"
	"github.com/unievents/unievents/internal/stats"
	"github.com/unievents/unievents/internal/types"
)

const (
	// KindNewEvent tags notifications created when an event is published.
	KindNewEvent = "new_event"

	// studentRole is the hard-coded fanout audience, kept for parity with
	// the product behavior. A subscription model would replace this.
	studentRole = "student"

	defaultListLimit = 50
)

// ErrNotFound covers both a missing notification and one owned by another
// recipient, so mark-read cannot be used to probe for existence.
var ErrNotFound = errors.New("notification not found")

type Notifier struct {
	log   *log.Logger
	db    database.UniEventsRepository
	bc    server.Broadcaster
	stats stats.StatsProvider
}

func NewNotifier(logger *log.Logger, db database.UniEventsRepository, bc server.Broadcaster, sp stats.StatsProvider) *Notifier {
	if bc == nil {
		bc = server.NopBroadcaster{}
	}
	if sp == nil {
		sp = &stats.MockStatsUpdater{}
	}
	sp.RegisterMetric(stats.NotificationsFanned)

	return &Notifier{log: logger, db: db, bc: bc, stats: sp}
}

// FanOutNewEvent writes one notification per student and pushes each to
// that recipient's user room. It is best-effort by contract: the
// triggering event creation has already succeeded, so failures here are
// logged and swallowed.
func (n *Notifier) FanOutNewEvent(event database.Event) {
	recipients, err := n.db.ListAccountsByRole(studentRole)
	if err != nil {
		n.log.Printf("fanout %q: list recipients: %v", event.ExternalId, err)
		return
	}

	if len(recipients) == 0 {
		return
	}

	params := make([]database.CreateNotificationParams, 0, len(recipients))
	for _, r := range recipients {
		params = append(params, database.CreateNotificationParams{
			RecipientId:    r.Id,
			Kind:           KindNewEvent,
			Message:        fmt.Sprintf("New event: %s", event.Title),
			RelatedEventId: event.Id,
		})
	}

	created, err := n.db.CreateNotifications(params)
	if err != nil {
		n.log.Printf("fanout %q: create notifications: %v", event.ExternalId, err)
		return
	}

	for _, record := range created {
		n.bc.Emit(server.UserRoom(record.RecipientId), server.NewNotificationEvent, types.Notification{
			Id:             record.Id,
			Kind:           record.Kind,
			Message:        record.Message,
			RelatedEventId: event.ExternalId,
			Read:           record.Read,
			CreatedAt:      record.CreatedAt,
		})
	}

	n.stats.Add(stats.NotificationsFanned, len(created))
}

// MarkRead flips the read flag of a single notification owned by
// recipientId. A notification that is missing or belongs to someone else
// returns ErrNotFound either way.
func (n *Notifier) MarkRead(notificationId, recipientId int) (database.Notification, error) {
	record, err := n.db.MarkNotificationRead(notificationId, recipientId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Notification{}, ErrNotFound
		}
		return database.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}

	return record, nil
}

// MarkAllRead flips every unread notification for the recipient. Zero
// affected rows is still a success, which makes the call idempotent.
func (n *Notifier) MarkAllRead(recipientId int) error {
	if _, err := n.db.MarkAllNotificationsRead(recipientId); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	return nil
}

// ListForRecipient returns the most recent notifications, newest first.
func (n *Notifier) ListForRecipient(recipientId, limit int) ([]database.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	return n.db.ListNotificationsByRecipient(recipientId, limit)
}
