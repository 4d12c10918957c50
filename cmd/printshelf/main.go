package main

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/frodejac/printshelf/internal/api"
	h "github.com/frodejac/printshelf/internal/api/handlers"
	"github.com/frodejac/printshelf/internal/auth"
	g "github.com/frodejac/printshelf/internal/auth/google"
	s "github.com/frodejac/printshelf/internal/auth/static"
	"github.com/frodejac/printshelf/internal/config"
	"github.com/frodejac/printshelf/internal/database"
	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/database/sessions"
	"github.com/frodejac/printshelf/internal/files"
	"github.com/frodejac/printshelf/internal/i18n"
	"github.com/frodejac/printshelf/internal/logging"
	"github.com/frodejac/printshelf/internal/uploads"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(*cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var googleAuth *g.Auth
	if cfg.Auth.Type == config.AuthTypeGoogle {
		for _, warning := range cfg.Auth.Google.Warnings() {
			logger.Warn("google auth configuration", zap.String("warning", warning))
		}
		googleAuth, err = g.NewAuthFromConfig(ctx, cfg.Auth.Google)
		if err != nil {
			logger.Fatal("failed to create Google auth", zap.Error(err))
		}
	}

	var staticAuth *s.Auth
	if cfg.Auth.Type == config.AuthTypeStatic {
		staticAuth, err = s.NewAuthFromConfig(cfg.Auth.Static)
		if err != nil {
			logger.Fatal("failed to create static auth", zap.Error(err))
		}
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	sessionStore, err := sessions.NewSessionStore(db)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}
	recordStore, err := records.NewRecordStore(db)
	if err != nil {
		logger.Fatal("failed to create record store", zap.Error(err))
	}

	sessionService := auth.NewSessionService(
		sessionStore,
		&auth.SessionCookieConfig{
			Name:     cfg.Session.Cookie.Name,
			Path:     cfg.Session.Cookie.Path,
			HttpOnly: cfg.Session.Cookie.HttpOnly,
			Secure:   cfg.Session.Cookie.Secure,
			SameSite: cfg.Session.Cookie.SameSite,
			Lifetime: cfg.Session.Lifetime,
		},
		logger,
	)
	go sessionService.Sweep(ctx, time.Hour)

	uploadService, err := uploads.NewUploadService(
		&uploads.Config{
			MaxFileSize:       cfg.Library.MaxFileSize,
			BaseDir:           cfg.Library.Path,
			AllowedExtensions: cfg.Library.AllowedExtensions,
		},
		recordStore,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create upload service", zap.Error(err))
	}
	fileService := files.NewFileService(
		&files.Config{
			BaseDir:           cfg.Library.Path,
			MaxFileSize:       cfg.Library.MaxFileSize,
			AllowedExtensions: cfg.Library.AllowedExtensions,
		},
		recordStore,
		logger,
	)

	catalog, err := i18n.NewCatalog()
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	templates, err := template.ParseGlob(filepath.Join(cfg.TemplatePath, "*.html"))
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	router := api.NewRouter(
		templates,
		sessionService,
		staticAuth,
		googleAuth,
		fileService,
		uploadService,
		recordStore,
		h.NewDisplay(catalog, cfg.Display.DefaultLanguage, cfg.Display.FuzzyTimes),
		logger,
		&api.Config{
			AuthType:           cfg.Auth.Type,
			StaticPath:         cfg.StaticPath,
			UseHsts:            cfg.Server.UseHsts,
			UseSecurityHeaders: cfg.Server.UseSecurityHeaders,
		},
	)

	mux := http.NewServeMux()
	router.SetupRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down server", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("library", cfg.Library.Path),
		zap.Strings("languages", catalog.Languages()),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
