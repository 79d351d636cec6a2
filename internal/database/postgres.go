package database

import (
	"database/sql"
)

type PgUniEventsRepository struct {
	conn *sql.DB
}

func NewPgUniEventsRepository(dsn string) (*PgUniEventsRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgUniEventsRepository{conn: db}, nil
}

func (db *PgUniEventsRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgUniEventsRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
