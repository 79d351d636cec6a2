package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/unievents/unievents/internal/api"
	"github.com/unievents/unievents/internal/comment"
	"github.com/unievents/unievents/internal/config"
	"github.com/unievents/unievents/internal/database"
	"github.com/unievents/unievents/internal/notification"
	"github.com/unievents/unievents/internal/rsvp"
	"github.com/unievents/unievents/internal/server"
	"github.com/unievents/unievents/internal/stats"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	runMigrations  bool
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.BoolVar(&runMigrations, "migrate", false, "run database migrations on startup")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[unievents] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgUniEventsRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if runMigrations {
		if err := dbConn.Migrate(); err != nil {
			logger.Fatal("migrate:", err)
		}
		logger.Println("database migrations applied")
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	eventServer, err := server.NewEventServer(logger, statsUpdater)
	if err != nil {
		logger.Fatal("new event server:", err)
	}

	ledger := rsvp.NewLedger(logger, dbConn, eventServer)
	comments := comment.NewStore(logger, dbConn, eventServer)
	notifier := notification.NewNotifier(logger, dbConn, eventServer, statsUpdater)

	srv := api.NewUniEventsApp(mux, logger, eventServer, dbConn, ledger, comments, notifier, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go eventServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down event server...")
	if err := eventServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("event server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
