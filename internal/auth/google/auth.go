package google

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const stateCookieName = "gstate"

func (a *Auth) authorize(ctx context.Context, claims *Claims) error {
	if claims.Email == "" || !claims.EmailVerified {
		return fmt.Errorf("email missing or unverified")
	}
	if !a.verifyDomain(claims) {
		return fmt.Errorf("unauthorized domain: %s", claims.Email)
	}
	ok, err := a.verifyGroupMembership(ctx, claims)
	if err != nil {
		return fmt.Errorf("failed to check group membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("unauthorized group membership: %s", claims.Email)
	}
	return nil
}

func (a *Auth) verifyDomain(claims *Claims) bool {
	if len(a.allowedDomains) == 0 {
		return true
	}
	emailParts := strings.Split(claims.Email, "@")
	return len(emailParts) == 2 && slices.Contains(a.allowedDomains, emailParts[1])
}

// verifyGroupMembership passes when the user is in any allowed group.
func (a *Auth) verifyGroupMembership(ctx context.Context, claims *Claims) (bool, error) {
	if len(a.allowedGroups) == 0 {
		return true, nil
	}
	var lastErr error
	for _, group := range a.allowedGroups {
		ok, err := a.isMember(ctx, group, claims.Email)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, lastErr
}
