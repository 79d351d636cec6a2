package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"github.com/unievents/unievents/internal/comment"
	"github.com/unievents/unievents/internal/config"
	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/notification"
	"github.com/unievents/unievents/internal/rsvp"
	"github.com/unievents/unievents/internal/server"
)

type UniEventsApp struct {
	log            *log.Logger
	db             database.UniEventsRepository
	mux            *http.Server
	es             *server.EventServer
	bc             server.Broadcaster
	rsvps          *rsvp.Ledger
	comments       *comment.Store
	notifications  *notification.Notifier
	signingKey     []byte
	allowedOrigins []string
	validate       *validator.Validate

	// generateShortId is a field so tests can stub id generation.
	generateShortId func() (string, error)
}

func NewUniEventsApp(
	mux *http.ServeMux,
	logger *log.Logger,
	es *server.EventServer,
	db database.UniEventsRepository,
	ledger *rsvp.Ledger,
	comments *comment.Store,
	notifier *notification.Notifier,
	cfg *config.Config,
) *UniEventsApp {
	var bc server.Broadcaster = server.NopBroadcaster{}
	if es != nil {
		bc = es
	}

	s := &UniEventsApp{
		log:             logger,
		db:              db,
		es:              es,
		bc:              bc,
		rsvps:           ledger,
		comments:        comments,
		notifications:   notifier,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		validate:        validator.New(),
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.Handle("POST /api/events", s.authMiddleware(s.createEvent))
	mux.HandleFunc("GET /api/events/{id}", s.getEvent)
	mux.Handle("POST /api/events/{id}/rsvp", s.authMiddleware(s.toggleRsvp))
	mux.Handle("DELETE /api/events/{id}/rsvp", s.authMiddleware(s.removeRsvp))
	mux.HandleFunc("GET /api/events/{id}/comments", s.listComments)
	mux.Handle("POST /api/events/{id}/comments", s.authMiddleware(s.createComment))
	mux.Handle("DELETE /api/comments/{id}", s.authMiddleware(s.deleteComment))
	mux.Handle("POST /api/saves", s.authMiddleware(s.createSave))
	mux.Handle("DELETE /api/saves/{eventId}", s.authMiddleware(s.removeSave))
	mux.Handle("GET /api/rsvps", s.authMiddleware(s.listMyRsvps))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("PATCH /api/notifications/{id}/read", s.authMiddleware(s.markNotificationRead))
	mux.Handle("PATCH /api/notifications/read-all", s.authMiddleware(s.markAllNotificationsRead))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *UniEventsApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *UniEventsApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *UniEventsApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
