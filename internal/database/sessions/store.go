package sessions

import (
	"database/sql"
	"errors"
	"time"
)

func NewSessionStore(db *sql.DB) (*Store, error) {
	ss := &Store{db: db}
	if err := ss.initialize(); err != nil {
		return nil, err
	}
	return ss, nil
}

func (ss *Store) initialize() error {
	_, err := ss.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		);
	`)
	return err
}

func (ss *Store) Create(session *Session) error {
	_, err := ss.db.Exec(`
		INSERT INTO sessions (id, subject, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Id, session.Subject, session.CreatedAt.UTC(), session.ExpiresAt.UTC())
	return err
}

// Get returns nil without an error when the session does not exist.
func (ss *Store) Get(sessionId string) (*Session, error) {
	var session Session
	err := ss.db.QueryRow(`
		SELECT id, subject, created_at, expires_at
		FROM sessions
		WHERE id = ?
	`, sessionId).Scan(&session.Id, &session.Subject, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (ss *Store) Delete(sessionId string) error {
	_, err := ss.db.Exec(`
		DELETE FROM sessions
		WHERE id = ?
	`, sessionId)
	return err
}

// DeleteExpired removes sessions that expired before now and returns how
// many were removed.
func (ss *Store) DeleteExpired(now time.Time) (int64, error) {
	res, err := ss.db.Exec(`
		DELETE FROM sessions
		WHERE expires_at < ?
	`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
