package static

import "golang.org/x/time/rate"

type Config struct {
	UsersJsonPath string
	// LoginsPerMinute caps login attempts across all users. Zero disables
	// the limit.
	LoginsPerMinute int
}

type Auth struct {
	// Users maps user names to bcrypt hashes.
	Users   map[string]string
	limiter *rate.Limiter
}
