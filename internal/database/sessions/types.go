package sessions

import (
	"database/sql"
	"time"
)

type Store struct {
	db *sql.DB
}

type Session struct {
	Id string
	// Subject is the user name or e-mail address that logged in.
	Subject   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
