package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/config"
	"go.uber.org/zap"
)

type BaseHandler struct {
	authType  config.AuthType
	sessions  *auth.SessionService
	templates *template.Template
	logger    *zap.Logger
}

func (b *BaseHandler) renderTemplate(w http.ResponseWriter, name string, data any) {
	if err := b.templates.ExecuteTemplate(w, name, data); err != nil {
		b.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (b *BaseHandler) render404(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	b.renderTemplate(w, "404.html", nil)
}

func (b *BaseHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (b *BaseHandler) writeError(w http.ResponseWriter, status int, message string) {
	b.writeJSON(w, status, map[string]string{"error": message})
}
