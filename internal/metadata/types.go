package metadata

import "time"

// Localizer translates a display label. The key is the English label.
type Localizer interface {
	Translate(key string) string
}

// DisplayPreferences carries the viewer's appearance settings.
type DisplayPreferences interface {
	FuzzyTimes() bool
}

// Renderer turns raw values into display text.
type Renderer interface {
	Duration(seconds float64) string
	FuzzyPrintTime(seconds float64) string
	TimeAgo(t time.Time) string
	Filament(entry *FilamentEntry) string
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

type FilamentEntry struct {
	Length *float64 `json:"length,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// Tool is one key of a filament map. Entry is nil when the document held
// something other than an object under Key.
type Tool struct {
	Key   string
	Entry *FilamentEntry
}

// Filament is a filament map in document order.
type Filament []Tool

// Get returns the entry stored under key, or nil.
func (f Filament) Get(key string) *FilamentEntry {
	for _, t := range f {
		if t.Key == key {
			return t.Entry
		}
	}
	return nil
}

// Summary holds the fields shared by both analysis variants.
type Summary struct {
	Dimensions         *Dimensions
	Filament           Filament
	EstimatedPrintTime *float64
}

type GcodeAnalysis struct {
	Summary
}

// Analysis is the generic analysis variant produced by non-gcode slicers.
type Analysis struct {
	Summary
	LayerCount    int
	LayerHeightMM float64
	PrinterName   string
}

type LastPrint struct {
	Date      time.Time
	PrintTime float64
	Success   *bool
}

func (l *LastPrint) empty() bool {
	return l.Date.IsZero() && l.PrintTime == 0
}

type PrintHistory struct {
	Success int
	Failure int
	Last    *LastPrint
}

// FileRecord is the per-file metadata attached to a listed file.
type FileRecord struct {
	GcodeAnalysis *GcodeAnalysis
	Analysis      *Analysis
	Prints        *PrintHistory
}

func (r *FileRecord) lastPrint() *LastPrint {
	if r.Prints == nil || r.Prints.Last == nil || r.Prints.Last.empty() {
		return nil
	}
	return r.Prints.Last
}
