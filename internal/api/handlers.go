package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unievents/unievents/internal/comment"
	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/notification"
	"github.com/unievents/unievents/internal/rsvp"
	"github.com/unievents/unievents/internal/server"
	"github.com/unievents/unievents/internal/types"
)

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Category    string    `json:"category"`
}

type ToggleRsvpRequest struct {
	Status string `json:"status"`
}

type CreateSaveRequest struct {
	EventId string `json:"event_id" validate:"required"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}

type RsvpResponse struct {
	Rsvp       types.Rsvp `json:"rsvp"`
	GoingCount int        `json:"going_count"`
}

func (s *UniEventsApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// lookupEvent resolves the event named by the request path. It writes the
// error response itself and reports success via the bool.
func (s *UniEventsApp) lookupEvent(w http.ResponseWriter, externalId string) (database.Event, bool) {
	if externalId == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Event{}, false
	}

	event, err := s.db.GetEventByExternalId(externalId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return database.Event{}, false
	}

	return event, true
}

func (s *UniEventsApp) eventResponse(ev database.Event, goingCount int) types.Event {
	return types.Event{
		Id:          ev.ExternalId,
		Title:       ev.Title,
		Description: ev.Description,
		Date:        ev.Date,
		Location:    ev.Location,
		Category:    ev.Category,
		OrganizerId: ev.OrganizerId,
		Published:   ev.Published,
		GoingCount:  goingCount,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

func (s *UniEventsApp) createEvent(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if user.Role != "organizer" && user.Role != "admin" {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	sid, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	category := req.Category
	if category == "" {
		category = "Other"
	}

	newEvent, err := s.db.CreateEvent(database.CreateEventParams{
		ExternalId:  sid,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Category:    category,
		OrganizerId: userId,
		Published:   true,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, s.eventResponse(newEvent, 0))

	// side effects after the response: the creation has succeeded and
	// must not be failed or delayed by fanout problems
	s.bc.Emit(server.GlobalRoom, server.NewEventEvent, s.eventResponse(newEvent, 0))
	s.notifications.FanOutNewEvent(newEvent)
}

func (s *UniEventsApp) listEvents(w http.ResponseWriter, _ *http.Request) {
	events, err := s.db.ListEvents()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Event, 0, len(events))
	for _, ev := range events {
		count, err := s.rsvps.CountGoing(ev.Id)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		resp = append(resp, s.eventResponse(ev, count))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *UniEventsApp) getEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := s.lookupEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	count, err := s.rsvps.CountGoing(event.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, s.eventResponse(event, count))
}

func (s *UniEventsApp) toggleRsvp(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	event, ok := s.lookupEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	// an absent or empty body toggles to the default status
	var req ToggleRsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Status = ""
	}

	record, err := s.rsvps.Toggle(userId, event, req.Status)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	count, err := s.rsvps.CountGoing(event.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, RsvpResponse{
		Rsvp:       rsvpResponse(record, event.ExternalId),
		GoingCount: count,
	})
}

func (s *UniEventsApp) removeRsvp(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	event, ok := s.lookupEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	if err := s.rsvps.Remove(userId, event); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *UniEventsApp) createSave(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	event, ok := s.lookupEvent(w, req.EventId)
	if !ok {
		return
	}

	record, err := s.rsvps.CreateSave(userId, event)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, rsvp.ErrAlreadySaved) {
			errResp = NewConflictError("already saved")
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, rsvpResponse(record, event.ExternalId))
}

func (s *UniEventsApp) removeSave(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	event, ok := s.lookupEvent(w, r.PathValue("eventId"))
	if !ok {
		return
	}

	if err := s.rsvps.Remove(userId, event); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *UniEventsApp) listMyRsvps(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var statuses []string
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		statuses = strings.Split(statusParam, ",")
	}

	records, err := s.rsvps.ListForUser(userId, statuses...)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Rsvp, 0, len(records))
	for _, record := range records {
		resp = append(resp, rsvpResponse(record, record.EventExternalId))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *UniEventsApp) listComments(w http.ResponseWriter, r *http.Request) {
	event, ok := s.lookupEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	records, err := s.comments.ListForEvent(event.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Comment, 0, len(records))
	for _, record := range records {
		resp = append(resp, commentResponse(record))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *UniEventsApp) createComment(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	event, ok := s.lookupEvent(w, r.PathValue("id"))
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	record, err := s.comments.Create(event, userId, req.Text)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, comment.ErrEmptyText) {
			errResp = NewValidationError("comment text is required")
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, commentResponse(record))
}

func (s *UniEventsApp) deleteComment(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	commentId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.comments.Delete(commentId, userId, user.Role); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, comment.ErrNotFound):
			errResp = NewNotFoundError()
		case errors.Is(err, comment.ErrForbidden):
			errResp = NewForbiddenError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *UniEventsApp) listNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var limit int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	records, err := s.notifications.ListForRecipient(userId, limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Notification, 0, len(records))
	for _, record := range records {
		resp = append(resp, notificationResponse(record))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *UniEventsApp) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	notificationId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	record, err := s.notifications.MarkRead(notificationId, userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, notification.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, notificationResponse(record))
}

func (s *UniEventsApp) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.notifications.MarkAllRead(userId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *UniEventsApp) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(types.User{
		Id:           user.Id,
		Name:         user.Name,
		EmailAddress: user.EmailAddress,
		Role:         user.Role,
	}, conn, s.es, s.log)

	s.es.RegisterClient(client)
}

func rsvpResponse(record database.Rsvp, eventExternalId string) types.Rsvp {
	return types.Rsvp{
		EventId:   eventExternalId,
		UserId:    record.UserId,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func commentResponse(record database.CommentWithAuthor) types.Comment {
	return types.Comment{
		Id:        record.Id,
		EventId:   record.EventExternalId,
		Text:      record.Text,
		CreatedAt: record.CreatedAt,
		Author: types.Author{
			Id:    record.UserId,
			Name:  record.AuthorName,
			Photo: record.AuthorPhoto,
		},
	}
}

func notificationResponse(record database.Notification) types.Notification {
	return types.Notification{
		Id:             record.Id,
		Kind:           record.Kind,
		Message:        record.Message,
		RelatedEventId: record.RelatedExternal,
		Read:           record.Read,
		CreatedAt:      record.CreatedAt,
	}
}
