// Package comment owns event comments and their realtime fanout.
package comment

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/server"
	"github.com/unievents/unievents/internal/types"
)

const adminRole = "admin"

var (
	// ErrEmptyText rejects comments with no visible content.
	ErrEmptyText = errors.New("comment text is required")
	// ErrNotFound means the comment does not exist.
	ErrNotFound = errors.New("comment not found")
	// ErrForbidden means the actor is neither the author nor an admin.
	ErrForbidden = errors.New("forbidden")
)

type Store struct {
	log *log.Logger
	db  database.UniEventsRepository
	bc  server.Broadcaster
}

func NewStore(logger *log.Logger, db database.UniEventsRepository, bc server.Broadcaster) *Store {
	if bc == nil {
		bc = server.NopBroadcaster{}
	}

	return &Store{log: logger, db: db, bc: bc}
}

// Create persists a comment and broadcasts it to the event's room. The
// broadcast payload is re-read after the insert so it carries the author's
// name and photo; subscribers never see a comment without author metadata.
func (s *Store) Create(event database.Event, authorId int, text string) (database.CommentWithAuthor, error) {
	if strings.TrimSpace(text) == "" {
		return database.CommentWithAuthor{}, ErrEmptyText
	}

	created, err := s.db.CreateComment(event.Id, authorId, text)
	if err != nil {
		return database.CommentWithAuthor{}, fmt.Errorf("create comment: %w", err)
	}

	enriched, err := s.db.GetCommentWithAuthor(created.Id)
	if err != nil {
		// the comment is persisted; the mutation succeeded even though
		// the enriched re-read (and therefore the broadcast) did not
		s.log.Printf("enrich comment %d: %v", created.Id, err)
		return database.CommentWithAuthor{Comment: created, EventExternalId: event.ExternalId}, nil
	}

	s.bc.Emit(server.EventRoom(event.ExternalId), server.NewCommentEvent, commentPayload(enriched))

	return enriched, nil
}

// Delete removes a comment if the actor is its author or an admin, then
// broadcasts the deleted comment's id to the event's room.
func (s *Store) Delete(commentId, actorId int, actorRole string) error {
	existing, err := s.db.GetCommentWithAuthor(commentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}

	if existing.UserId != actorId && actorRole != adminRole {
		return ErrForbidden
	}

	if err := s.db.DeleteComment(commentId); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.bc.Emit(server.EventRoom(existing.EventExternalId), server.DeleteCommentEvent, strconv.Itoa(commentId))

	return nil
}

// ListForEvent returns the event's full comment history, oldest first,
// with author fields denormalized for display. The fanout only carries new
// comments; initial page loads come through here.
func (s *Store) ListForEvent(eventId int) ([]database.CommentWithAuthor, error) {
	return s.db.ListCommentsByEvent(eventId)
}

func commentPayload(c database.CommentWithAuthor) types.Comment {
	return types.Comment{
		Id:        c.Id,
		EventId:   c.EventExternalId,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Author: types.Author{
			Id:    c.UserId,
			Name:  c.AuthorName,
			Photo: c.AuthorPhoto,
		},
	}
}
