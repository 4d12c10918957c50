package static

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
)

func NewAuthFromConfig(config *Config) (*Auth, error) {
	data, err := os.ReadFile(config.UsersJsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read static auth config: %w", err)
	}
	var users map[string]string
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal static auth config: %w", err)
	}
	return NewAuth(users, config.LoginsPerMinute)
}

func NewAuth(users map[string]string, loginsPerMinute int) (*Auth, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users found in static auth config")
	}
	auth := &Auth{Users: users}
	if loginsPerMinute > 0 {
		auth.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(loginsPerMinute)), loginsPerMinute)
	}
	return auth, nil
}
