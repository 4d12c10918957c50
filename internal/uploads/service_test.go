package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/frodejac/printshelf/internal/database/records"
	"github.com/frodejac/printshelf/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedRecord struct {
	dir, name, source string
	rec               *metadata.FileRecord
}

type fakeWriter struct {
	stored []storedRecord
}

func (f *fakeWriter) PutRecord(dir, name string, rec *metadata.FileRecord, source string) error {
	f.stored = append(f.stored, storedRecord{dir: dir, name: name, source: source, rec: rec})
	return nil
}

func newService(t *testing.T) (*UploadService, *fakeWriter, string) {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "resin"), 0755))
	writer := &fakeWriter{}
	s, err := NewUploadService(&Config{BaseDir: base, MaxFileSize: 1024}, writer, zap.NewNop())
	require.NoError(t, err)
	return s, writer, base
}

func uploadRequest(t *testing.T, fields map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, file := range fields {
		w, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/files/resin/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadService_Upload(t *testing.T) {
	s, writer, base := newService(t)

	name, err := s.Upload(uploadRequest(t, map[string][2]string{"file": {"cube.ctb", "sliced"}}), "resin")
	require.NoError(t, err)
	assert.Equal(t, "cube.ctb", name)

	data, err := os.ReadFile(filepath.Join(base, "resin", "cube.ctb"))
	require.NoError(t, err)
	assert.Equal(t, "sliced", string(data))
	assert.Empty(t, writer.stored)

	_, err = s.Upload(uploadRequest(t, map[string][2]string{"file": {"cube.ctb", "other"}}), "resin")
	assert.ErrorIs(t, err, ErrExists)
	data, err = os.ReadFile(filepath.Join(base, "resin", "cube.ctb"))
	require.NoError(t, err)
	assert.Equal(t, "sliced", string(data), "existing files are kept")
}

func TestUploadService_UploadWithReport(t *testing.T) {
	s, writer, _ := newService(t)

	report := "RESULTS:\nlayer_count: 42\nlayer_height_mm: 0.05\nprinter name: Mars\n"
	_, err := s.Upload(uploadRequest(t, map[string][2]string{
		"file":   {"part.pwmx", "sliced"},
		"report": {"part.yaml", report},
	}), "resin")
	require.NoError(t, err)

	require.Len(t, writer.stored, 1)
	stored := writer.stored[0]
	assert.Equal(t, "resin", stored.dir)
	assert.Equal(t, "part.pwmx", stored.name)
	assert.Equal(t, records.SourceReport, stored.source)
	assert.Equal(t, 42, stored.rec.Analysis.LayerCount)
}

func TestUploadService_UploadRejects(t *testing.T) {
	s, writer, base := newService(t)

	tests := []struct {
		name      string
		directory string
		fields    map[string][2]string
		want      error
	}{
		{name: "extension", directory: "resin", fields: map[string][2]string{"file": {"notes.txt", "x"}}, want: ErrNotAllowed},
		{name: "empty", directory: "resin", fields: map[string][2]string{"file": {"cube.ctb", ""}}, want: ErrEmptyFile},
		{name: "too large", directory: "resin", fields: map[string][2]string{"file": {"cube.ctb", string(make([]byte, 2048))}}, want: ErrTooLarge},
		{name: "missing directory", directory: "fdm", fields: map[string][2]string{"file": {"a.gcode", "x"}}, want: ErrNoDirectory},
		{name: "traversal", directory: "..", fields: map[string][2]string{"file": {"a.gcode", "x"}}, want: ErrNoDirectory},
		{name: "bad report", directory: "resin", fields: map[string][2]string{"file": {"b.ctb", "x"}, "report": {"r.yaml", "RESULTS:\n"}}, want: ErrBadReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Upload(uploadRequest(t, tt.fields), tt.directory)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, writer.stored)
	_, err := os.Stat(filepath.Join(base, "resin", "b.ctb"))
	assert.True(t, os.IsNotExist(err), "a rejected report keeps the file out")
}

func TestUploadService_CreateDirectory(t *testing.T) {
	s, _, base := newService(t)

	name, err := s.CreateDirectory("../Mini figures!")
	require.NoError(t, err)
	assert.Equal(t, "Minifigures", name)
	_, err = os.Stat(filepath.Join(base, "Minifigures"))
	assert.NoError(t, err)

	_, err = s.CreateDirectory("resin")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.CreateDirectory("...")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"cube.ctb":               "cube.ctb",
		"../../etc/passwd.ctb":   "passwd.ctb",
		`C:\slicer\out\ring.pws`: "ring.pws",
		"näive <b>.gcode":        "nive b.gcode",
		".ctb":                   "ctb",
		"...hidden.ctb":          "hidden.ctb",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
