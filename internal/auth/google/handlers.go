package google

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

func (a *Auth) Redirect(w http.ResponseWriter, r *http.Request) {
	state := a.setAuthState(w)
	http.Redirect(w, r, a.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// Callback completes the login and returns the user's e-mail address.
func (a *Auth) Callback(w http.ResponseWriter, r *http.Request) (string, error) {
	defer a.clearAuthState(w)

	if err := a.validateAuthState(r); err != nil {
		return "", fmt.Errorf("failed to validate state: %w", err)
	}

	ctx := r.Context()
	token, err := a.oauthConfig.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", fmt.Errorf("token response has no id_token")
	}
	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify id token: %w", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse claims: %w", err)
	}
	if err := a.authorize(ctx, &claims); err != nil {
		return "", err
	}
	return claims.Email, nil
}
