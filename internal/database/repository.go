package database

type UniEventsRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	ListAccountsByRole(role string) ([]User, error)
	CreateEvent(params CreateEventParams) (Event, error)
	GetEventByExternalId(externalId string) (Event, error)
	ListEvents() ([]Event, error)
	UpsertRsvp(userId, eventId int, status string) (Rsvp, error)
	CreateRsvp(userId, eventId int, status string) (Rsvp, error)
	DeleteRsvp(userId, eventId int) error
	ListRsvpsByUser(userId int, statuses []string) ([]Rsvp, error)
	CountGoing(eventId int) (int, error)
	CreateComment(eventId, userId int, text string) (Comment, error)
	GetCommentWithAuthor(commentId int) (CommentWithAuthor, error)
	DeleteComment(commentId int) error
	ListCommentsByEvent(eventId int) ([]CommentWithAuthor, error)
	CreateNotifications(params []CreateNotificationParams) ([]Notification, error)
	MarkNotificationRead(notificationId, recipientId int) (Notification, error)
	MarkAllNotificationsRead(recipientId int) (int64, error)
	ListNotificationsByRecipient(recipientId, limit int) ([]Notification, error)
}
