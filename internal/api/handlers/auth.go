package handlers

import (
	"html/template"
	"net/http"

	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/auth/google"
	"github.com/frodejac/printshelf/internal/auth/static"
	"github.com/frodejac/printshelf/internal/config"
	"go.uber.org/zap"
)

type AuthHandler struct {
	BaseHandler
	googleAuth *google.Auth
	staticAuth *static.Auth
}

func NewAuthHandler(authType config.AuthType, sessions *auth.SessionService, templates *template.Template, logger *zap.Logger, googleAuth *google.Auth, staticAuth *static.Auth) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{
			authType:  authType,
			sessions:  sessions,
			templates: templates,
			logger:    logger,
		},
		googleAuth: googleAuth,
		staticAuth: staticAuth,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && h.authType == config.AuthTypeGoogle:
		h.googleAuth.Redirect(w, r)
	case r.Method == http.MethodPost && h.authType == config.AuthTypeStatic:
		h.staticLogin(w, r)
	default:
		h.logger.Info("invalid login method or auth type",
			zap.String("method", r.Method),
			zap.String("auth_type", string(h.authType)),
		)
		h.render404(w)
	}
}

func (h *AuthHandler) staticLogin(w http.ResponseWriter, r *http.Request) {
	if !h.staticAuth.Allow() {
		h.logger.Warn("login rate limit exceeded", zap.String("remote_addr", r.RemoteAddr))
		http.Redirect(w, r, "/?state=2", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	if !h.staticAuth.Validate(username, r.PostForm.Get("password")) {
		h.logger.Info("invalid login attempt", zap.String("username", username))
		http.Redirect(w, r, "/?state=1", http.StatusSeeOther)
		return
	}
	if _, err := h.sessions.Create(w, username); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/files/", http.StatusSeeOther)
}

func (h *AuthHandler) HandleGoogleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.authType != config.AuthTypeGoogle {
		h.render404(w)
		return
	}
	email, err := h.googleAuth.Callback(w, r)
	if err != nil {
		h.logger.Warn("google oauth callback failed", zap.Error(err))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := h.sessions.Create(w, email); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/files/", http.StatusFound)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
