package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/frodejac/printshelf/internal/auth"
	"github.com/frodejac/printshelf/internal/config"
	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/files"
	"github.com/frodejac/printshelf/internal/metadata"
	"go.uber.org/zap"
)

const maxRecordSize = 1 << 20

// RecordsHandler serves the JSON API for file records.
type RecordsHandler struct {
	BaseHandler
	files   *files.FileService
	records *records.Store
}

// PrintRequest is the body of a print event. Date is in unix seconds and
// defaults to now.
type PrintRequest struct {
	Date      float64 `json:"date"`
	PrintTime float64 `json:"printTime"`
	Success   bool    `json:"success"`
}

func NewRecordsHandler(authType config.AuthType, sessions *auth.SessionService, templates *template.Template, logger *zap.Logger, fileService *files.FileService, recordStore *records.Store) *RecordsHandler {
	return &RecordsHandler{
		BaseHandler: BaseHandler{
			authType:  authType,
			sessions:  sessions,
			templates: templates,
			logger:    logger,
		},
		files:   fileService,
		records: recordStore,
	}
}

func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	dir, name, ok := h.file(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Get(dir, name)
	if errors.Is(err, records.ErrRecordNotFound) {
		h.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get record", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *RecordsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	dir, name, ok := h.file(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordSize))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, "record too large")
		return
	}
	err = h.records.Put(dir, name, body, records.SourceAPI)
	if errors.Is(err, metadata.ErrNotObject) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to store record", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.logger.Info("record stored",
		zap.String("directory", dir),
		zap.String("file", name),
		zap.String("subject", auth.Subject(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	dir, name, ok := h.file(w, r)
	if !ok {
		return
	}
	err := h.records.Delete(dir, name)
	if errors.Is(err, records.ErrRecordNotFound) {
		h.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete record", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) HandleAddPrint(w http.ResponseWriter, r *http.Request) {
	dir, name, ok := h.file(w, r)
	if !ok {
		return
	}
	var req PrintRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordSize)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid print event")
		return
	}
	if req.PrintTime < 0 || req.Date < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid print event")
		return
	}
	p := records.Print{PrintTime: req.PrintTime, Success: req.Success}
	if req.Date > 0 {
		sec := int64(req.Date)
		p.Date = time.Unix(sec, int64((req.Date-float64(sec))*1e9))
	}
	if err := h.records.AddPrint(dir, name, p); err != nil {
		h.logger.Error("failed to add print", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// file resolves the path values to an existing library file.
func (h *RecordsHandler) file(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	dir, name := r.PathValue("directory"), r.PathValue("filename")
	_, err := h.files.Stat(dir, name)
	switch {
	case err == nil:
		return dir, name, true
	case errors.Is(err, files.ErrNotFound), errors.Is(err, files.ErrInvalidName):
		h.writeError(w, http.StatusNotFound, "file not found")
	default:
		h.logger.Error("failed to stat file", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
	return "", "", false
}
