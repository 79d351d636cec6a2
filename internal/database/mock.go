package database

import (
	"github.com/stretchr/testify/mock"
)

type MockUniEventsRepository struct {
	mock.Mock
}

func (m *MockUniEventsRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockUniEventsRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockUniEventsRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockUniEventsRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockUniEventsRepository) ListAccountsByRole(role string) ([]User, error) {
	args := m.Called(role)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockUniEventsRepository) CreateEvent(params CreateEventParams) (Event, error) {
	args := m.Called(params)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockUniEventsRepository) GetEventByExternalId(externalId string) (Event, error) {
	args := m.Called(externalId)
	return args.Get(0).(Event), args.Error(1)
}
func (m *MockUniEventsRepository) ListEvents() ([]Event, error) {
	args := m.Called()
	return args.Get(0).([]Event), args.Error(1)
}
func (m *MockUniEventsRepository) UpsertRsvp(userId, eventId int, status string) (Rsvp, error) {
	args := m.Called(userId, eventId, status)
	return args.Get(0).(Rsvp), args.Error(1)
}
func (m *MockUniEventsRepository) CreateRsvp(userId, eventId int, status string) (Rsvp, error) {
	args := m.Called(userId, eventId, status)
	return args.Get(0).(Rsvp), args.Error(1)
}
func (m *MockUniEventsRepository) DeleteRsvp(userId, eventId int) error {
	args := m.Called(userId, eventId)
	return args.Error(0)
}
func (m *MockUniEventsRepository) ListRsvpsByUser(userId int, statuses []string) ([]Rsvp, error) {
	args := m.Called(userId, statuses)
	return args.Get(0).([]Rsvp), args.Error(1)
}
func (m *MockUniEventsRepository) CountGoing(eventId int) (int, error) {
	args := m.Called(eventId)
	return args.Int(0), args.Error(1)
}
func (m *MockUniEventsRepository) CreateComment(eventId, userId int, text string) (Comment, error) {
	args := m.Called(eventId, userId, text)
	return args.Get(0).(Comment), args.Error(1)
}
func (m *MockUniEventsRepository) GetCommentWithAuthor(commentId int) (CommentWithAuthor, error) {
	args := m.Called(commentId)
	return args.Get(0).(CommentWithAuthor), args.Error(1)
}
func (m *MockUniEventsRepository) DeleteComment(commentId int) error {
	args := m.Called(commentId)
	return args.Error(0)
}
func (m *MockUniEventsRepository) ListCommentsByEvent(eventId int) ([]CommentWithAuthor, error) {
	args := m.Called(eventId)
	return args.Get(0).([]CommentWithAuthor), args.Error(1)
}
func (m *MockUniEventsRepository) CreateNotifications(params []CreateNotificationParams) ([]Notification, error) {
	args := m.Called(params)
	if notifications, ok := args.Get(0).([]Notification); ok {
		return notifications, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUniEventsRepository) MarkNotificationRead(notificationId, recipientId int) (Notification, error) {
	args := m.Called(notificationId, recipientId)
	return args.Get(0).(Notification), args.Error(1)
}
func (m *MockUniEventsRepository) MarkAllNotificationsRead(recipientId int) (int64, error) {
	args := m.Called(recipientId)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockUniEventsRepository) ListNotificationsByRecipient(recipientId, limit int) ([]Notification, error) {
	args := m.Called(recipientId, limit)
	return args.Get(0).([]Notification), args.Error(1)
}
