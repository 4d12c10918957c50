package api

import (
	"html/template"
	"net/http"

	h "github.com/frodejac/printshelf/internal/api/handlers"
	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/auth/google"
	"github.com/frodejac/printshelf/internal/auth/static"
	"github.com/frodejac/printshelf/internal/config"
	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/files"
	"github.com/frodejac/printshelf/internal/metrics"
	"github.com/frodejac/printshelf/internal/uploads"
	"go.uber.org/zap"
)

type Config struct {
	AuthType           config.AuthType
	StaticPath         string
	UseHsts            bool
	UseSecurityHeaders bool
}

type handlers struct {
	auth    *h.AuthHandler
	files   *h.FilesHandler
	home    *h.HomeHandler
	records *h.RecordsHandler
}

type Router struct {
	sessions *auth.SessionService
	config   *Config
	logger   *zap.Logger
	handlers *handlers
}

func NewRouter(
	templates *template.Template,
	sessions *auth.SessionService,
	staticAuth *static.Auth,
	googleAuth *google.Auth,
	fileService *files.FileService,
	uploadService *uploads.UploadService,
	recordStore *records.Store,
	display *h.Display,
	logger *zap.Logger,
	config *Config,
) *Router {
	return &Router{
		config: config,
		logger: logger,
		handlers: &handlers{
			auth:    h.NewAuthHandler(config.AuthType, sessions, templates, logger, googleAuth, staticAuth),
			files:   h.NewFilesHandler(config.AuthType, sessions, templates, logger, fileService, uploadService, display),
			home:    h.NewHomeHandler(config.AuthType, sessions, templates, logger),
			records: h.NewRecordsHandler(config.AuthType, sessions, templates, logger, fileService, recordStore),
		},
		sessions: sessions,
	}
}

func (r *Router) SetupRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("/", r.handlers.home.HandleHome)
	mux.HandleFunc("/login/", r.handlers.auth.HandleLogin)
	mux.HandleFunc("GET /logout/", r.handlers.auth.HandleLogout)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(r.config.StaticPath))))
	mux.HandleFunc("GET /oauth/callback/", r.handlers.auth.HandleGoogleOAuthCallback)
	mux.Handle("GET /metrics", metrics.Handler())

	// Admin routes
	adminRoutes := http.NewServeMux()
	adminRoutes.HandleFunc("GET /admin/home/", r.handlers.files.HandleHome)
	adminRoutes.HandleFunc("GET /admin/files/", r.handlers.files.HandleListDirectories)
	adminRoutes.HandleFunc("POST /admin/files/", r.handlers.files.HandleCreateDirectory)
	adminRoutes.HandleFunc("GET /admin/files/{directory}/", r.handlers.files.HandleListDirectory)
	adminRoutes.HandleFunc("POST /admin/files/{directory}/", r.handlers.files.HandleUpload)
	adminRoutes.HandleFunc("GET /admin/files/{directory}/{filename}", r.handlers.files.HandleDownloadFile)
	adminRoutes.HandleFunc("GET /admin/files/{directory}/{filename}/details", r.handlers.files.HandleDetails)

	adminRoutes.HandleFunc("GET /admin/api/records/{directory}/{filename}", r.handlers.records.HandleGet)
	adminRoutes.HandleFunc("PUT /admin/api/records/{directory}/{filename}", r.handlers.records.HandlePut)
	adminRoutes.HandleFunc("DELETE /admin/api/records/{directory}/{filename}", r.handlers.records.HandleDelete)
	adminRoutes.HandleFunc("POST /admin/api/records/{directory}/{filename}/prints", r.handlers.records.HandleAddPrint)

	mux.Handle("/admin/", r.sessions.RequireAuth(adminRoutes))
}

// Handler wraps mux in the middleware chain. The request id is assigned
// first so every later layer can log it.
func (r *Router) Handler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux
	if r.config.UseSecurityHeaders {
		handler = SecurityHeadersMiddleware(r.config.UseHsts)(handler)
	}
	handler = LoggingMiddleware(r.logger)(handler)
	return RequestIdMiddleware(handler)
}
