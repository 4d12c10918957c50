package static

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist so unknown
// and known users take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("printshelf"), bcrypt.DefaultCost)

// Allow reports whether another login attempt may be made now.
func (a *Auth) Allow() bool {
	return a.limiter == nil || a.limiter.Allow()
}

func (a *Auth) Validate(username, password string) bool {
	hash, ok := a.Users[username]
	if !ok || hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
