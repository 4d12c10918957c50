package config

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/frodejac/printshelf/internal/auth/google"
	"github.com/frodejac/printshelf/internal/auth/static"
	"github.com/frodejac/printshelf/internal/logging"
	"github.com/frodejac/printshelf/internal/uploads"
)

type AuthType string

const (
	AuthTypeStatic AuthType = "static"
	AuthTypeGoogle AuthType = "google"
)

type AuthConfig struct {
	Type   AuthType
	Google *google.Config
	Static *static.Config
}

type ServerConfig struct {
	Port               string
	UseHsts            bool
	UseSecurityHeaders bool
}

type DatabaseConfig struct {
	Path string
}

type SessionCookieConfig struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

type SessionConfig struct {
	Lifetime time.Duration
	Cookie   *SessionCookieConfig
}

type LibraryConfig struct {
	Path              string
	MaxFileSize       int64
	AllowedExtensions []string
}

type DisplayConfig struct {
	// FuzzyTimes renders estimated print times as approximations.
	FuzzyTimes      bool
	DefaultLanguage string
}

type Config struct {
	BaseUrl       string
	StaticPath    string
	TemplatePath  string
	IsDevelopment bool
	Server        *ServerConfig
	Database      *DatabaseConfig
	Session       *SessionConfig
	Library       *LibraryConfig
	Display       *DisplayConfig
	Log           *logging.Config
	Auth          *AuthConfig
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %v", key, err)
	}
	return b, nil
}

// list splits a comma separated value. "*" means no restriction.
func list(value string) []string {
	if value == "" || value == "*" {
		return []string{}
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func LoadConfig() (*Config, error) {
	authType := AuthType(getenv("AUTH_TYPE", "static"))
	if authType != AuthTypeStatic && authType != AuthTypeGoogle {
		return nil, fmt.Errorf("invalid AUTH_TYPE: %s", authType)
	}

	serverPort := getenv("SERVER_PORT", "8080")
	baseURL := strings.TrimSuffix(getenv("BASE_URL", "http://localhost:"+serverPort), "/")
	isDevelopment := os.Getenv("ENVIRONMENT") == "development"

	serverUseHsts, err := getbool("USE_HSTS", false)
	if err != nil {
		return nil, err
	}
	serverUseSecurityHeaders, err := getbool("USE_SECURITY_HEADERS", false)
	if err != nil {
		return nil, err
	}
	cookieSecure, err := getbool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	fuzzyTimes, err := getbool("FUZZY_TIMES", false)
	if err != nil {
		return nil, err
	}

	maxFileSize, err := strconv.ParseInt(getenv("MAX_FILE_SIZE_BYTES", "536870912"), 10, 64) // 512 MB
	if err != nil {
		return nil, fmt.Errorf("failed to parse MAX_FILE_SIZE_BYTES: %v", err)
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE_BYTES must be positive")
	}
	allowedExtensions := list(os.Getenv("ALLOWED_EXTENSIONS"))
	if len(allowedExtensions) == 0 {
		allowedExtensions = slices.Clone(uploads.DefaultExtensions)
	}
	for i, ext := range allowedExtensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowedExtensions[i] = ext
	}

	sessionLifetime, err := time.ParseDuration(getenv("SESSION_LIFETIME", "8h"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SESSION_LIFETIME: %v", err)
	}
	loginsPerMinute, err := strconv.Atoi(getenv("STATIC_AUTH_RATE_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse STATIC_AUTH_RATE_LIMIT: %v", err)
	}

	scopes := getenv("SCOPES", fmt.Sprintf("%s %s %s", oidc.ScopeOpenID, "email", "profile"))
	googleAuth := &google.Config{
		AllowedDomains:               list(getenv("ALLOWED_DOMAINS", "*")),
		AllowedGroups:                list(getenv("ALLOWED_GROUPS", "*")),
		Issuer:                       "https://accounts.google.com",
		ClientID:                     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret:                 os.Getenv("GOOGLE_CLIENT_SECRET"),
		CookieSecure:                 cookieSecure,
		RedirectURL:                  baseURL + "/oauth/callback/",
		ServiceAccountConfigJsonPath: os.Getenv("GOOGLE_SERVICE_ACCOUNT_CONFIG_JSON_PATH"),
		Scopes:                       strings.Fields(scopes),
	}
	if authType == AuthTypeGoogle {
		if err := googleAuth.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate Google auth config: %v", err)
		}
	}

	cfg := &Config{
		BaseUrl:       baseURL,
		StaticPath:    getenv("STATIC_PATH", "web/static"),
		TemplatePath:  getenv("TEMPLATE_PATH", "web/templates"),
		IsDevelopment: isDevelopment,
		Server: &ServerConfig{
			Port:               serverPort,
			UseHsts:            serverUseHsts,
			UseSecurityHeaders: serverUseSecurityHeaders,
		},
		Database: &DatabaseConfig{
			Path: getenv("DATABASE_PATH", "printshelf.db"),
		},
		Session: &SessionConfig{
			Lifetime: sessionLifetime,
			Cookie: &SessionCookieConfig{
				Name:     "session",
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
			},
		},
		Library: &LibraryConfig{
			Path:              getenv("LIBRARY_PATH", "library"),
			MaxFileSize:       maxFileSize,
			AllowedExtensions: allowedExtensions,
		},
		Display: &DisplayConfig{
			FuzzyTimes:      fuzzyTimes,
			DefaultLanguage: getenv("DEFAULT_LANGUAGE", "en"),
		},
		Log: &logging.Config{
			Level:       getenv("LOG_LEVEL", "info"),
			Format:      getenv("LOG_FORMAT", "json"),
			Development: isDevelopment,
		},
		Auth: &AuthConfig{
			Type:   authType,
			Google: googleAuth,
			Static: &static.Config{
				UsersJsonPath:   getenv("STATIC_AUTH_PATH", "users.json"),
				LoginsPerMinute: loginsPerMinute,
			},
		},
	}
	return cfg, nil
}
