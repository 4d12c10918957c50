package google

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type Config struct {
	AllowedDomains               []string
	AllowedGroups                []string
	Issuer                       string
	ClientID                     string
	ClientSecret                 string
	CookieSecure                 bool
	RedirectURL                  string
	ServiceAccountConfigJsonPath string
	Scopes                       []string
}

// membershipFunc reports whether email is a member of group.
type membershipFunc func(ctx context.Context, group, email string) (bool, error)

type Auth struct {
	allowedDomains []string
	allowedGroups  []string
	cookieSecure   bool
	oauthConfig    *oauth2.Config
	verifier       *oidc.IDTokenVerifier
	isMember       membershipFunc
}

// Claims are the ID token claims used to authorize a user.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Domain        string `json:"hd"`
}
