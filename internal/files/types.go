package files

import (
	"errors"
	"html/template"
	"time"

	"github.com/frodejac/printshelf/internal/metadata"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid name")
	ErrTooLarge    = errors.New("file exceeds the maximum allowed size")
)

type Config struct {
	BaseDir           string
	MaxFileSize       int64
	AllowedExtensions []string
}

// RecordSource supplies the stored metadata of library files.
type RecordSource interface {
	Get(dir, name string) (*metadata.FileRecord, error)
	ListDirectory(dir string) (map[string]*metadata.FileRecord, error)
}

// View carries the per-request rendering settings for metadata panels.
type View struct {
	Formatter   *metadata.Formatter
	Preferences metadata.DisplayPreferences
}

type FileService struct {
	config  *Config
	records RecordSource
	logger  *zap.Logger
}

type Directory struct {
	Name         string
	Size         int64
	SizeText     string
	Files        []File
	FileCount    int
	LastModified time.Time
	Modified     string
}

type File struct {
	Name              string
	Size              int64
	SizeText          string
	LastModified      time.Time
	Modified          string
	HasAdditionalData bool
	AdditionalData    template.HTML
}
