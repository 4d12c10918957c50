// Package analysis reads the YAML report a resin slicer analysis run prints
// and turns it into a file record.
package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/frodejac/printshelf/internal/metadata"
	"gopkg.in/yaml.v3"
)

// resultsMarker precedes the YAML document in analyser output. Anything
// before it is progress chatter.
const resultsMarker = "RESULTS:"

var ErrEmptyReport = errors.New("empty analysis report")

type Report struct {
	Filename      string    `yaml:"filename"`
	Path          string    `yaml:"path"`
	BedSizeMM     []float64 `yaml:"bed_size_mm"`
	HeightMM      float64   `yaml:"height_mm"`
	LayerCount    int       `yaml:"layer_count"`
	LayerHeightMM float64   `yaml:"layer_height_mm"`
	Resolution    []int     `yaml:"resolution"`
	PrintTimeSecs float64   `yaml:"print_time_secs"`
	TotalTime     float64   `yaml:"total_time"`
	PrinterName   string    `yaml:"printer name"`
	Volume        *float64  `yaml:"volume"`

	// Older analysers wrote the printer name with an underscore.
	LegacyPrinterName string `yaml:"printer_name"`
}

// ParseReport decodes an analysis report. Output captured from the analyser
// command may be passed as is.
func ParseReport(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if i := bytes.Index(data, []byte(resultsMarker)); i >= 0 {
		data = data[i+len(resultsMarker):]
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyReport
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.PrinterName == "" {
		report.PrinterName = report.LegacyPrinterName
	}
	return &report, nil
}

// Analysis maps the report onto the generic analysis shape shown for resin
// files. Fields the report lacks stay empty.
func (r *Report) Analysis() *metadata.Analysis {
	a := &metadata.Analysis{
		LayerCount:    r.LayerCount,
		LayerHeightMM: r.LayerHeightMM,
		PrinterName:   r.PrinterName,
	}
	if len(r.BedSizeMM) >= 2 {
		a.Dimensions = &metadata.Dimensions{
			Width:  r.BedSizeMM[0],
			Depth:  r.BedSizeMM[1],
			Height: r.HeightMM,
		}
	}
	if r.PrintTimeSecs > 0 {
		seconds := r.PrintTimeSecs
		a.EstimatedPrintTime = &seconds
	}
	if r.Volume != nil {
		volume := *r.Volume
		a.Filament = metadata.Filament{{Key: "tool0", Entry: &metadata.FilamentEntry{Volume: &volume}}}
	}
	return a
}

func (r *Report) Record() *metadata.FileRecord {
	return &metadata.FileRecord{Analysis: r.Analysis()}
}
