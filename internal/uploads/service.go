package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/frodejac/printshelf/internal/analysis"
	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/metrics"
	"go.uber.org/zap"
)

var (
	invalidFilenameChars  = regexp.MustCompile(`[^a-zA-Z0-9\-_. ]+`)
	invalidDirectoryChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)
)

func NewUploadService(cfg *Config, records RecordWriter, logger *zap.Logger) (*UploadService, error) {
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultExtensions
	}
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating library directory: %w", err)
	}
	return &UploadService{config: cfg, records: records, logger: logger}, nil
}

// CreateDirectory creates a library directory and returns its sanitized
// name.
func (u *UploadService) CreateDirectory(name string) (string, error) {
	name = invalidDirectoryChars.ReplaceAllString(filepath.Base(filepath.Clean(name)), "")
	if name == "" {
		return "", ErrInvalidName
	}
	err := os.Mkdir(filepath.Join(u.config.BaseDir, name), 0755)
	if errors.Is(err, os.ErrExist) {
		return "", ErrExists
	}
	if err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return name, nil
}

// Upload stores the "file" form field in directory. An optional "report"
// field holding the slicer's analysis output becomes the file's record.
// Existing files are never overwritten.
func (u *UploadService) Upload(r *http.Request, directory string) (string, error) {
	name, err := u.upload(r, directory)
	switch {
	case err == nil:
		metrics.RecordUpload("ok")
	case isRejection(err):
		metrics.RecordUpload("rejected")
	default:
		metrics.RecordUpload("error")
	}
	return name, err
}

func (u *UploadService) upload(r *http.Request, directory string) (string, error) {
	if directory == "" || strings.HasPrefix(directory, ".") || filepath.Base(directory) != directory {
		return "", ErrNoDirectory
	}
	dirPath := filepath.Join(u.config.BaseDir, directory)
	if info, err := os.Stat(dirPath); err != nil || !info.IsDir() {
		return "", ErrNoDirectory
	}

	r.Body = http.MaxBytesReader(nil, r.Body, u.config.MaxFileSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", ErrTooLarge
		}
		return "", fmt.Errorf("failed to parse form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("failed to get file from form: %w", err)
	}
	defer file.Close()

	if header.Size <= 0 {
		return "", ErrEmptyFile
	}
	if header.Size > u.config.MaxFileSize {
		return "", ErrTooLarge
	}
	filename := sanitizeFilename(header.Filename)
	if filename == "" {
		return "", ErrInvalidName
	}
	if !u.checkFileExtension(filename) {
		return "", ErrNotAllowed
	}

	report, err := u.report(r)
	if err != nil {
		return "", err
	}

	if err := save(file, filepath.Join(dirPath, filename)); err != nil {
		return "", err
	}
	u.logger.Info("file uploaded",
		zap.String("directory", directory),
		zap.String("file", filename),
		zap.Int64("size", header.Size),
	)

	if report != nil {
		if err := u.records.PutRecord(directory, filename, report.Record(), records.SourceReport); err != nil {
			return filename, fmt.Errorf("failed to store analysis report: %w", err)
		}
	}
	return filename, nil
}

// report parses the optional analysis report attached to an upload.
func (u *UploadService) report(r *http.Request) (*analysis.Report, error) {
	f, _, err := r.FormFile("report")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report from form: %w", err)
	}
	defer f.Close()

	report, err := analysis.ParseReport(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReport, err)
	}
	return report, nil
}

func save(src multipart.File, path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("failed to save file: %w", err)
	}
	return out.Close()
}

func (u *UploadService) checkFileExtension(filename string) bool {
	return slices.Contains(u.config.AllowedExtensions, strings.ToLower(filepath.Ext(filename)))
}

func isRejection(err error) bool {
	for _, target := range []error{ErrNotAllowed, ErrEmptyFile, ErrTooLarge, ErrExists, ErrInvalidName, ErrNoDirectory, ErrBadReport} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sanitizeFilename reduces filename to its base name without unusual
// characters, capped at 255 bytes with the extension kept.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.Clean(strings.ReplaceAll(filename, `\`, "/")))
	filename = strings.TrimSpace(invalidFilenameChars.ReplaceAllString(filename, ""))
	filename = strings.TrimLeft(filename, ".")
	ext := filepath.Ext(filename)
	if strings.TrimSuffix(filename, ext) == "" {
		return ""
	}
	if len(filename) > 255 {
		filename = filename[:255-len(ext)] + ext
	}
	return filename
}
