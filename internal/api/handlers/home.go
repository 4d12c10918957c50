package handlers

import (
	"html/template"
	"net/http"

	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/config"
	"go.uber.org/zap"
)

type HomeHandler struct {
	BaseHandler
}

// HomeData is the login page. Subject is always empty; the layout reads it.
type HomeData struct {
	Subject     string
	GoogleAuth  bool
	StaticAuth  bool
	Incorrect   bool
	RateLimited bool
}

func NewHomeHandler(authType config.AuthType, sessions *auth.SessionService, templates *template.Template, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{
		BaseHandler: BaseHandler{
			authType:  authType,
			sessions:  sessions,
			templates: templates,
			logger:    logger,
		},
	}
}

func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		h.render404(w)
		return
	}
	session, err := h.sessions.Validate(r)
	if err != nil {
		h.logger.Error("failed to validate session", zap.Error(err))
	}
	if session != nil {
		http.Redirect(w, r, "/admin/files/", http.StatusFound)
		return
	}

	state := r.URL.Query().Get("state")
	h.renderTemplate(w, "home.html", HomeData{
		GoogleAuth:  h.authType == config.AuthTypeGoogle,
		StaticAuth:  h.authType == config.AuthTypeStatic,
		Incorrect:   state == "1",
		RateLimited: state == "2",
	})
}
