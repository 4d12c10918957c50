package handlers

import (
	"errors"
	"html/template"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/config"
	"github.com/frodejac/printshelf/internal/files"
	"github.com/frodejac/printshelf/internal/uploads"
	"go.uber.org/zap"
)

type FilesHandler struct {
	BaseHandler
	files   *files.FileService
	uploads *uploads.UploadService
	display *Display
}

type DirectoriesData struct {
	Directories []files.Directory
	Subject     string
	Error       string
}

type DirectoryData struct {
	Directory *files.Directory
	Subject   string
	Fuzzy     bool
	Uploaded  string
	Error     string
}

func NewFilesHandler(authType config.AuthType, sessions *auth.SessionService, templates *template.Template, logger *zap.Logger, fileService *files.FileService, uploadService *uploads.UploadService, display *Display) *FilesHandler {
	return &FilesHandler{
		BaseHandler: BaseHandler{
			authType:  authType,
			sessions:  sessions,
			templates: templates,
			logger:    logger,
		},
		files:   fileService,
		uploads: uploadService,
		display: display,
	}
}

func (h *FilesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/files/", http.StatusFound)
}

func (h *FilesHandler) HandleListDirectories(w http.ResponseWriter, r *http.Request) {
	dirs, err := h.files.ListDirectories()
	if err != nil {
		h.logger.Error("failed to list directories", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderTemplate(w, "directories.html", DirectoriesData{
		Directories: dirs,
		Subject:     auth.Subject(r.Context()),
		Error:       r.URL.Query().Get("error"),
	})
}

func (h *FilesHandler) HandleCreateDirectory(w http.ResponseWriter, r *http.Request) {
	name, err := h.uploads.CreateDirectory(r.FormValue("directory"))
	if err != nil {
		if !errors.Is(err, uploads.ErrExists) && !errors.Is(err, uploads.ErrInvalidName) {
			h.logger.Error("failed to create directory", zap.Error(err))
		}
		http.Redirect(w, r, "/admin/files/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/files/"+url.PathEscape(name)+"/", http.StatusSeeOther)
}

func (h *FilesHandler) HandleListDirectory(w http.ResponseWriter, r *http.Request) {
	view := h.display.View(r)
	dir, err := h.files.ListFiles(r.PathValue("directory"), view)
	if errors.Is(err, files.ErrNotFound) || errors.Is(err, files.ErrInvalidName) {
		h.render404(w)
		return
	}
	if err != nil {
		h.logger.Error("failed to list files", zap.String("directory", r.PathValue("directory")), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	query := r.URL.Query()
	h.renderTemplate(w, "directory.html", DirectoryData{
		Directory: dir,
		Subject:   auth.Subject(r.Context()),
		Fuzzy:     view.Preferences.FuzzyTimes(),
		Uploaded:  query.Get("uploaded"),
		Error:     query.Get("error"),
	})
}

func (h *FilesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	directory := r.PathValue("directory")
	target := "/admin/files/" + url.PathEscape(directory) + "/"

	name, err := h.uploads.Upload(r, directory)
	if errors.Is(err, uploads.ErrNoDirectory) {
		h.render404(w)
		return
	}
	if err != nil {
		h.logger.Warn("upload failed", zap.String("directory", directory), zap.Error(err))
		http.Redirect(w, r, target+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target+"?uploaded="+url.QueryEscape(name), http.StatusSeeOther)
}

func (h *FilesHandler) HandleDownloadFile(w http.ResponseWriter, r *http.Request) {
	filePath, fileInfo, err := h.files.GetFilePath(r.PathValue("directory"), r.PathValue("filename"))
	if err != nil {
		if !errors.Is(err, files.ErrNotFound) && !errors.Is(err, files.ErrInvalidName) {
			h.logger.Error("failed to get file path", zap.Error(err))
		}
		h.render404(w)
		return
	}
	file, err := os.Open(filePath)
	if err != nil {
		h.logger.Error("failed to open file", zap.Error(err))
		h.render404(w)
		return
	}
	defer file.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileInfo.Name()}))
	http.ServeContent(w, r, fileInfo.Name(), fileInfo.ModTime(), file)
}

// HandleDetails writes the metadata panel of a single file as an HTML
// fragment.
func (h *FilesHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	f, err := h.files.Details(r.PathValue("directory"), r.PathValue("filename"), h.display.View(r))
	if errors.Is(err, files.ErrNotFound) || errors.Is(err, files.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to render details", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderTemplate(w, "panel", f)
}
