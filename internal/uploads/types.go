package uploads

import (
	"errors"

	"github.com/frodejac/printshelf/internal/metadata"
	"go.uber.org/zap"
)

var (
	ErrNotAllowed  = errors.New("file extension not allowed")
	ErrEmptyFile   = errors.New("file is empty")
	ErrTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrExists      = errors.New("file already exists")
	ErrInvalidName = errors.New("invalid name")
	ErrNoDirectory = errors.New("directory does not exist")
	ErrBadReport   = errors.New("invalid analysis report")
)

// DefaultExtensions are the sliced file formats the library accepts.
var DefaultExtensions = []string{".cbddlp", ".photon", ".ctb", ".fdg", ".pws", ".pw0", ".pwms", ".pwmx", ".gcode"}

type Config struct {
	MaxFileSize       int64
	BaseDir           string
	AllowedExtensions []string
}

// RecordWriter stores the record derived from an uploaded analysis report.
type RecordWriter interface {
	PutRecord(dir, name string, rec *metadata.FileRecord, source string) error
}

type UploadService struct {
	config  *Config
	records RecordWriter
	logger  *zap.Logger
}
