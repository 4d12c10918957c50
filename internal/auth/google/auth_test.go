package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func members(groups map[string][]string) membershipFunc {
	return func(_ context.Context, group, email string) (bool, error) {
		list, ok := groups[group]
		if !ok {
			return false, errors.New("group not found")
		}
		for _, m := range list {
			if m == email {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestAuth_Authorize(t *testing.T) {
	auth := &Auth{
		allowedDomains: []string{"example.com"},
		allowedGroups:  []string{"missing@example.com", "print@example.com"},
		isMember:       members(map[string][]string{"print@example.com": {"ada@example.com"}}),
	}

	tests := []struct {
		name    string
		claims  Claims
		wantErr bool
	}{
		{name: "member", claims: Claims{Email: "ada@example.com", EmailVerified: true}},
		{name: "not a member", claims: Claims{Email: "bob@example.com", EmailVerified: true}, wantErr: true},
		{name: "wrong domain", claims: Claims{Email: "ada@other.org", EmailVerified: true}, wantErr: true},
		{name: "unverified", claims: Claims{Email: "ada@example.com"}, wantErr: true},
		{name: "no email", claims: Claims{EmailVerified: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.authorize(context.Background(), &tt.claims)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuth_VerifyGroupMembership(t *testing.T) {
	open := &Auth{}
	ok, err := open.verifyGroupMembership(context.Background(), &Claims{Email: "anyone@example.com"})
	require.NoError(t, err)
	assert.True(t, ok)

	failing := &Auth{
		allowedGroups: []string{"print@example.com"},
		isMember:      members(nil),
	}
	ok, err = failing.verifyGroupMembership(context.Background(), &Claims{Email: "ada@example.com"})
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestAuth_State(t *testing.T) {
	auth := &Auth{}
	rec := httptest.NewRecorder()
	state := auth.setAuthState(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/oauth/callback/?state="+state, nil)
	req.AddCookie(cookies[0])
	assert.NoError(t, auth.validateAuthState(req))

	forged := httptest.NewRequest(http.MethodGet, "/oauth/callback/?state=forged", nil)
	forged.AddCookie(cookies[0])
	assert.Error(t, auth.validateAuthState(forged))

	assert.Error(t, auth.validateAuthState(httptest.NewRequest(http.MethodGet, "/oauth/callback/?state="+state, nil)))
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{ClientID: "id", ClientSecret: "secret", Issuer: "https://accounts.google.com"}
	assert.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Warnings(), 3)

	cfg.AllowedGroups = []string{"print@example.com"}
	assert.Error(t, cfg.Validate())

	assert.Error(t, (&Config{}).Validate())
}
