package google

import (
	"fmt"
	"net/http"
	"time"

	"github.com/frodejac/printshelf/internal/random"
)

func (a *Auth) setAuthState(w http.ResponseWriter) string {
	state := random.Token(16)
	a.setStateCookie(w, state, time.Now().Add(10*time.Minute))
	return state
}

func (a *Auth) clearAuthState(w http.ResponseWriter) {
	a.setStateCookie(w, "", time.Unix(0, 0))
}

func (a *Auth) setStateCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Expires:  expires,
		HttpOnly: true,
		Path:     "/",
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) validateAuthState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return err
	}
	if cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		return fmt.Errorf("invalid oauth state")
	}
	return nil
}
