package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/frodejac/printshelf/internal/database/sessions"
	"github.com/frodejac/printshelf/internal/random"
	"go.uber.org/zap"
)

type SessionCookieConfig struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Lifetime time.Duration
}

type SessionService struct {
	store  *sessions.Store
	cookie *SessionCookieConfig
	logger *zap.Logger
	now    func() time.Time
}

type subjectKey struct{}

func NewSessionService(store *sessions.Store, cookieConfig *SessionCookieConfig, logger *zap.Logger) *SessionService {
	if cookieConfig == nil {
		panic("auth: cookie config is nil")
	}
	return &SessionService{
		store:  store,
		cookie: cookieConfig,
		logger: logger,
		now:    time.Now,
	}
}

// Subject returns the logged-in user stored on the request context by
// RequireAuth.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// RequireAuth rejects requests without a valid session. Page requests are
// sent to the login form, API requests get a 401.
func (s *SessionService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Validate(r)
		if err != nil {
			s.logger.Error("failed to validate session", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if session == nil {
			if strings.HasPrefix(r.URL.Path, "/admin/api/") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey{}, session.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Validate returns the request's session, or nil when there is none or it
// has expired.
func (s *SessionService) Validate(r *http.Request) (*sessions.Session, error) {
	id := s.sessionId(r)
	if id == "" {
		return nil, nil
	}

	session, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	if session.Expired(s.now()) {
		if err := s.store.Delete(id); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, nil
	}
	return session, nil
}

// Create starts a session for subject and sets its cookie.
func (s *SessionService) Create(w http.ResponseWriter, subject string) (string, error) {
	now := s.now()
	session := &sessions.Session{
		Id:        random.Token(32),
		Subject:   subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cookie.Lifetime),
	}
	if err := s.store.Create(session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	s.setCookie(w, session.Id, session.ExpiresAt)
	return session.Id, nil
}

func (s *SessionService) Destroy(w http.ResponseWriter, r *http.Request) error {
	id := s.sessionId(r)
	if id == "" {
		return nil
	}
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.setCookie(w, "", time.Unix(0, 0))
	return nil
}

// Sweep deletes expired sessions every interval until ctx is done.
func (s *SessionService) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpired(s.now())
			if err != nil {
				s.logger.Warn("failed to delete expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Debug("deleted expired sessions", zap.Int64("count", n))
			}
		}
	}
}

func (s *SessionService) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Expires:  expires,
		Path:     s.cookie.Path,
		HttpOnly: s.cookie.HttpOnly,
		Secure:   s.cookie.Secure,
		SameSite: s.cookie.SameSite,
	})
}

func (s *SessionService) sessionId(r *http.Request) string {
	c, err := r.Cookie(s.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
