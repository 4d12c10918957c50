package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/frodejac/printshelf/internal/database"
	"github.com/frodejac/printshelf/internal/database/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSessionService(t *testing.T) *SessionService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := sessions.NewSessionStore(db)
	require.NoError(t, err)

	return NewSessionService(store, &SessionCookieConfig{
		Name:     "session",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Lifetime: time.Hour,
	}, zap.NewNop())
}

func login(t *testing.T, s *SessionService) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := s.Create(rec, "admin")
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionService_RequireAuth(t *testing.T) {
	s := newSessionService(t)
	var subject string
	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = Subject(r.Context())
	}))

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		wantCode int
	}{
		{name: "page without session", path: "/admin/files/", wantCode: http.StatusSeeOther},
		{name: "api without session", path: "/admin/api/records/a/b", wantCode: http.StatusUnauthorized},
		{name: "unknown session", path: "/admin/files/", cookie: &http.Cookie{Name: "session", Value: "nope"}, wantCode: http.StatusSeeOther},
		{name: "valid session", path: "/admin/files/", cookie: login(t, s), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
	assert.Equal(t, "admin", subject)
}

func TestSessionService_Expired(t *testing.T) {
	s := newSessionService(t)
	cookie := login(t, s)
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	req := httptest.NewRequest(http.MethodGet, "/admin/files/", nil)
	req.AddCookie(cookie)

	session, err := s.Validate(req)
	require.NoError(t, err)
	assert.Nil(t, session)

	stored, err := s.store.Get(cookie.Value)
	require.NoError(t, err)
	assert.Nil(t, stored, "expired sessions are removed on use")
}

func TestSessionService_Destroy(t *testing.T) {
	s := newSessionService(t)
	cookie := login(t, s)

	req := httptest.NewRequest(http.MethodGet, "/logout/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	require.NoError(t, s.Destroy(rec, req))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)

	session, err := s.Validate(req)
	require.NoError(t, err)
	assert.Nil(t, session)
}
