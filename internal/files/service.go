package files

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/metadata"
	"github.com/frodejac/printshelf/internal/metrics"
	"go.uber.org/zap"
)

func NewFileService(config *Config, records RecordSource, logger *zap.Logger) *FileService {
	if config == nil {
		config = &Config{
			BaseDir:     "library",
			MaxFileSize: 1 << 30,
		}
	}
	return &FileService{config: config, records: records, logger: logger}
}

func (s *FileService) ListDirectories() ([]Directory, error) {
	entries, err := os.ReadDir(s.config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	dirs := make([]Directory, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat directory %s: %w", entry.Name(), err)
		}
		printable, err := s.printableFiles(entry.Name())
		if err != nil {
			return nil, err
		}

		var total int64
		for _, f := range printable {
			total += f.Size()
		}
		dirs = append(dirs, Directory{
			Name:         entry.Name(),
			Size:         total,
			SizeText:     humanize.Bytes(uint64(total)),
			FileCount:    len(printable),
			LastModified: info.ModTime(),
			Modified:     humanize.Time(info.ModTime()),
		})
	}
	return dirs, nil
}

// ListFiles lists the printable files of directory with their rendered
// metadata panels.
func (s *FileService) ListFiles(directory string, view View) (*Directory, error) {
	if !validName(directory) {
		return nil, ErrInvalidName
	}
	info, err := os.Stat(filepath.Join(s.config.BaseDir, directory))
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %w", directory, err)
	}

	printable, err := s.printableFiles(directory)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListDirectory(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for %s: %w", directory, err)
	}

	dir := &Directory{
		Name:         directory,
		Files:        make([]File, 0, len(printable)),
		FileCount:    len(printable),
		LastModified: info.ModTime(),
		Modified:     humanize.Time(info.ModTime()),
	}
	for _, fi := range printable {
		dir.Size += fi.Size()
		dir.Files = append(dir.Files, s.file(fi, recs[fi.Name()], view))
	}
	dir.SizeText = humanize.Bytes(uint64(dir.Size))
	return dir, nil
}

// Details returns a single file with its metadata panel. A file without a
// record is returned with an empty panel.
func (s *FileService) Details(directory, filename string, view View) (*File, error) {
	info, err := s.Stat(directory, filename)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(directory, filename)
	if errors.Is(err, records.ErrRecordNotFound) {
		rec, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record for %s/%s: %w", directory, filename, err)
	}
	f := s.file(info, rec, view)
	return &f, nil
}

// Stat returns the info of a printable library file.
func (s *FileService) Stat(directory, filename string) (os.FileInfo, error) {
	if !validName(directory) || !validName(filename) {
		return nil, ErrInvalidName
	}
	if !s.allowed(filename) {
		return nil, ErrNotFound
	}
	filePath := filepath.Join(s.config.BaseDir, directory, filename)

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}
	return info, nil
}

// GetFilePath resolves a library file for download.
func (s *FileService) GetFilePath(directory, filename string) (string, os.FileInfo, error) {
	info, err := s.Stat(directory, filename)
	if err != nil {
		return "", nil, err
	}
	if s.config.MaxFileSize > 0 && info.Size() > s.config.MaxFileSize {
		return "", nil, ErrTooLarge
	}
	return filepath.Join(s.config.BaseDir, directory, filename), info, nil
}

func (s *FileService) file(info os.FileInfo, rec *metadata.FileRecord, view View) File {
	f := File{
		Name:         info.Name(),
		Size:         info.Size(),
		SizeText:     humanize.Bytes(uint64(info.Size())),
		LastModified: info.ModTime(),
		Modified:     humanize.Time(info.ModTime()),
	}
	if !metadata.HasAdditionalData(rec) || view.Formatter == nil {
		return f
	}
	f.HasAdditionalData = true
	// The formatter escapes every free-text value it writes.
	f.AdditionalData = template.HTML(view.Formatter.Format(rec, view.Preferences))
	metrics.RecordPanel(metadata.Variant(rec))
	return f
}

func (s *FileService) printableFiles(directory string) ([]os.FileInfo, error) {
	dirPath := filepath.Join(s.config.BaseDir, directory)
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
	}
	out := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.allowed(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to get file info", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *FileService) allowed(filename string) bool {
	if len(s.config.AllowedExtensions) == 0 {
		return true
	}
	return slices.Contains(s.config.AllowedExtensions, strings.ToLower(filepath.Ext(filename)))
}

// validName accepts a single path element that is not hidden.
func validName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}
