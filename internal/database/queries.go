package database

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

func (db *PgUniEventsRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (name, email, password_hash, role, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, name, email, role, created_at, updated_at",
		params.Name,
		params.EmailAddress,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgUniEventsRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, role, photo, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.Role,
		&u.Photo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgUniEventsRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, role, photo, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.Role,
		&u.Photo,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgUniEventsRepository) ListAccountsByRole(role string) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, email, role FROM accounts WHERE role = $1",
		role,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Name, &u.EmailAddress, &u.Role); err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func (db *PgUniEventsRepository) CreateEvent(params CreateEventParams) (Event, error) {
	res := db.conn.QueryRow(
		"INSERT INTO events (external_id, title, description, date, location, category, organizer_id, published, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) "+
			"RETURNING id, external_id, title, description, date, location, category, organizer_id, published, created_at, updated_at",
		params.ExternalId,
		params.Title,
		params.Description,
		params.Date,
		params.Location,
		params.Category,
		params.OrganizerId,
		params.Published,
		time.Now().UTC(),
	)

	var ev Event
	err := res.Scan(
		&ev.Id,
		&ev.ExternalId,
		&ev.Title,
		&ev.Description,
		&ev.Date,
		&ev.Location,
		&ev.Category,
		&ev.OrganizerId,
		&ev.Published,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)

	return ev, err
}

func (db *PgUniEventsRepository) GetEventByExternalId(externalId string) (Event, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, title, description, date, location, category, organizer_id, published, created_at, updated_at "+
			"FROM events WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var ev Event
	err := row.Scan(
		&ev.Id,
		&ev.ExternalId,
		&ev.Title,
		&ev.Description,
		&ev.Date,
		&ev.Location,
		&ev.Category,
		&ev.OrganizerId,
		&ev.Published,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)

	return ev, err
}

func (db *PgUniEventsRepository) ListEvents() ([]Event, error) {
	rows, err := db.conn.Query(
		"SELECT id, external_id, title, description, date, location, category, organizer_id, published, created_at, updated_at " +
			"FROM events WHERE published = TRUE ORDER BY date ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		err = rows.Scan(
			&ev.Id,
			&ev.ExternalId,
			&ev.Title,
			&ev.Description,
			&ev.Date,
			&ev.Location,
			&ev.Category,
			&ev.OrganizerId,
			&ev.Published,
			&ev.CreatedAt,
			&ev.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, ev)
	}

	return events, rows.Err()
}

// UpsertRsvp creates or updates the single RSVP row for (userId, eventId).
// The conflict target is the table's unique constraint, so concurrent
// first-time toggles for the same pair collapse to one row with the
// loser's status applied as an update.
func (db *PgUniEventsRepository) UpsertRsvp(userId, eventId int, status string) (Rsvp, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rsvps (user_id, event_id, status, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) "+
			"ON CONFLICT (user_id, event_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at "+
			"RETURNING id, user_id, event_id, status, created_at, updated_at",
		userId,
		eventId,
		status,
		time.Now().UTC(),
	)

	var r Rsvp
	err := res.Scan(
		&r.Id,
		&r.UserId,
		&r.EventId,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	return r, err
}

// CreateRsvp is the insert-only variant. A duplicate (user_id, event_id)
// pair surfaces the unique violation to the caller, see IsUniqueViolation.
func (db *PgUniEventsRepository) CreateRsvp(userId, eventId int, status string) (Rsvp, error) {
	res := db.conn.QueryRow(
		"INSERT INTO rsvps (user_id, event_id, status, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) "+
			"RETURNING id, user_id, event_id, status, created_at, updated_at",
		userId,
		eventId,
		status,
		time.Now().UTC(),
	)

	var r Rsvp
	err := res.Scan(
		&r.Id,
		&r.UserId,
		&r.EventId,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	return r, err
}

func (db *PgUniEventsRepository) DeleteRsvp(userId, eventId int) error {
	_, err := db.conn.Exec(
		"DELETE FROM rsvps WHERE user_id = $1 AND event_id = $2",
		userId,
		eventId,
	)

	return err
}

func (db *PgUniEventsRepository) ListRsvpsByUser(userId int, statuses []string) ([]Rsvp, error) {
	query := "SELECT r.id, r.user_id, r.event_id, e.external_id, r.status, r.created_at, r.updated_at " +
		"FROM rsvps r JOIN events e ON r.event_id = e.id WHERE r.user_id = $1"
	args := []any{userId}
	if len(statuses) > 0 {
		query += " AND r.status = ANY($2)"
		args = append(args, pq.Array(statuses))
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []Rsvp
	for rows.Next() {
		var r Rsvp
		if err = rows.Scan(&r.Id, &r.UserId, &r.EventId, &r.EventExternalId, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}

		rsvps = append(rsvps, r)
	}

	return rsvps, rows.Err()
}

// CountGoing runs a fresh aggregate per call. The count is never stored,
// so it cannot drift from the rsvps table.
func (db *PgUniEventsRepository) CountGoing(eventId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = 'going'",
		eventId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

func (db *PgUniEventsRepository) CreateComment(eventId, userId int, text string) (Comment, error) {
	res := db.conn.QueryRow(
		"INSERT INTO comments (event_id, user_id, text, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, event_id, user_id, text, created_at",
		eventId,
		userId,
		text,
		time.Now().UTC(),
	)

	var c Comment
	err := res.Scan(
		&c.Id,
		&c.EventId,
		&c.UserId,
		&c.Text,
		&c.CreatedAt,
	)

	return c, err
}

func (db *PgUniEventsRepository) GetCommentWithAuthor(commentId int) (CommentWithAuthor, error) {
	row := db.conn.QueryRow(
		"SELECT c.id, c.event_id, c.user_id, c.text, c.created_at, e.external_id, a.name, a.photo "+
			"FROM comments c "+
			"JOIN events e ON c.event_id = e.id "+
			"JOIN accounts a ON c.user_id = a.id "+
			"WHERE c.id = $1 LIMIT 1",
		commentId,
	)

	var c CommentWithAuthor
	err := row.Scan(
		&c.Id,
		&c.EventId,
		&c.UserId,
		&c.Text,
		&c.CreatedAt,
		&c.EventExternalId,
		&c.AuthorName,
		&c.AuthorPhoto,
	)

	return c, err
}

func (db *PgUniEventsRepository) DeleteComment(commentId int) error {
	_, err := db.conn.Exec("DELETE FROM comments WHERE id = $1", commentId)

	return err
}

func (db *PgUniEventsRepository) ListCommentsByEvent(eventId int) ([]CommentWithAuthor, error) {
	rows, err := db.conn.Query(
		"SELECT c.id, c.event_id, c.user_id, c.text, c.created_at, e.external_id, a.name, a.photo "+
			"FROM comments c "+
			"JOIN events e ON c.event_id = e.id "+
			"JOIN accounts a ON c.user_id = a.id "+
			"WHERE c.event_id = $1 ORDER BY c.created_at ASC",
		eventId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments = make([]CommentWithAuthor, 0)
	for rows.Next() {
		var c CommentWithAuthor
		err = rows.Scan(
			&c.Id,
			&c.EventId,
			&c.UserId,
			&c.Text,
			&c.CreatedAt,
			&c.EventExternalId,
			&c.AuthorName,
			&c.AuthorPhoto,
		)
		if err != nil {
			return nil, err
		}

		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// CreateNotifications inserts one row per recipient inside a single
// transaction, so the fanout write is all-or-nothing.
func (db *PgUniEventsRepository) CreateNotifications(params []CreateNotificationParams) ([]Notification, error) {
	if len(params) == 0 {
		return nil, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(
		"INSERT INTO notifications (recipient_id, kind, message, related_event_id, read, created_at) " +
			"VALUES ($1, $2, $3, $4, FALSE, $5) RETURNING id, recipient_id, kind, message, related_event_id, read, created_at",
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	notifications := make([]Notification, 0, len(params))
	for _, p := range params {
		var n Notification
		err = stmt.QueryRow(p.RecipientId, p.Kind, p.Message, p.RelatedEventId, now).Scan(
			&n.Id,
			&n.RecipientId,
			&n.Kind,
			&n.Message,
			&n.RelatedEventId,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert notification for recipient %d: %w", p.RecipientId, err)
		}

		notifications = append(notifications, n)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkNotificationRead flips the read flag only when the row belongs to
// recipientId. Ownership lives in the WHERE clause so a foreign id and a
// missing id are indistinguishable to the caller.
func (db *PgUniEventsRepository) MarkNotificationRead(notificationId, recipientId int) (Notification, error) {
	row := db.conn.QueryRow(
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2 "+
			"RETURNING id, recipient_id, kind, message, related_event_id, read, created_at",
		notificationId,
		recipientId,
	)

	var n Notification
	err := row.Scan(
		&n.Id,
		&n.RecipientId,
		&n.Kind,
		&n.Message,
		&n.RelatedEventId,
		&n.Read,
		&n.CreatedAt,
	)

	return n, err
}

func (db *PgUniEventsRepository) MarkAllNotificationsRead(recipientId int) (int64, error) {
	res, err := db.conn.Exec(
		"UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE",
		recipientId,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (db *PgUniEventsRepository) ListNotificationsByRecipient(recipientId, limit int) ([]Notification, error) {
	rows, err := db.conn.Query(
		"SELECT n.id, n.recipient_id, n.kind, n.message, n.related_event_id, n.read, n.created_at, COALESCE(e.external_id, '') "+
			"FROM notifications n "+
			"LEFT JOIN events e ON n.related_event_id = e.id "+
			"WHERE n.recipient_id = $1 ORDER BY n.created_at DESC LIMIT $2",
		recipientId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications = make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		err = rows.Scan(
			&n.Id,
			&n.RecipientId,
			&n.Kind,
			&n.Message,
			&n.RelatedEventId,
			&n.Read,
			&n.CreatedAt,
			&n.RelatedExternal,
		)
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
