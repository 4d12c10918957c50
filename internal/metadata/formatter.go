// Package metadata renders the additional-data panel shown next to a listed
// print file: model size, filament usage, print time estimates, layer
// information and the last print.
package metadata

import (
	"fmt"
	"html"
	"strings"
)

const lineBreak = "<br>"

const (
	VariantGcode   = "gcode"
	VariantGeneric = "generic"
	VariantHistory = "history"
	VariantNone    = "none"
)

// HasAdditionalData reports whether the record carries anything the panel
// can show.
func HasAdditionalData(rec *FileRecord) bool {
	if rec == nil {
		return false
	}
	return rec.GcodeAnalysis != nil || rec.Analysis != nil || rec.lastPrint() != nil
}

// Variant names the branch Format takes for rec.
func Variant(rec *FileRecord) string {
	switch {
	case rec == nil:
		return VariantNone
	case rec.GcodeAnalysis != nil:
		return VariantGcode
	case rec.Analysis != nil:
		return VariantGeneric
	case rec.lastPrint() != nil:
		return VariantHistory
	}
	return VariantNone
}

type Formatter struct {
	localizer Localizer
	renderer  Renderer
}

func NewFormatter(localizer Localizer, renderer Renderer) *Formatter {
	return &Formatter{localizer: localizer, renderer: renderer}
}

// FormatAdditionalData is a one-shot Format.
func FormatAdditionalData(rec *FileRecord, prefs DisplayPreferences, localizer Localizer, renderer Renderer) string {
	return NewFormatter(localizer, renderer).Format(rec, prefs)
}

// Format builds the panel HTML for rec. A gcodeAnalysis hides analysis
// entirely. Missing fields leave their line out.
func (f *Formatter) Format(rec *FileRecord, prefs DisplayPreferences) string {
	if rec == nil {
		return ""
	}
	var b strings.Builder

	switch {
	case rec.GcodeAnalysis != nil:
		s := rec.GcodeAnalysis.Summary
		f.writeDimensions(&b, s.Dimensions)
		if len(s.Filament) == 1 {
			f.writeLine(&b, f.label("Filament"), f.renderer.Filament(s.Filament.Get("tool0")))
		} else {
			f.writeTools(&b, s.Filament)
		}
		f.writePrintTime(&b, s.EstimatedPrintTime, prefs)

	case rec.Analysis != nil:
		a := rec.Analysis
		f.writeDimensions(&b, a.Dimensions)
		if len(a.Filament) == 1 {
			if e := a.Filament.Get("tool0"); e != nil && e.Volume != nil {
				f.writeLine(&b, f.label("Volume"), fmt.Sprintf("%.3f mL", *e.Volume))
			}
		} else {
			f.writeTools(&b, a.Filament)
		}
		f.writePrintTime(&b, a.EstimatedPrintTime, prefs)
		if a.LayerCount != 0 {
			f.writeLine(&b, f.label("Layer count"), fmt.Sprintf("%02d", a.LayerCount))
		}
		if a.LayerHeightMM != 0 {
			f.writeLine(&b, f.label("Layer height"), fmt.Sprintf("%.2fmm", a.LayerHeightMM))
		}
		if a.PrinterName != "" {
			f.writeLine(&b, f.label("Printer name"), html.EscapeString(a.PrinterName))
		}
	}

	if last := rec.lastPrint(); last != nil {
		f.writeLine(&b, f.label("Last printed"), f.renderer.TimeAgo(last.Date))
		if last.PrintTime != 0 {
			b.WriteString(f.label("Last print time"))
			b.WriteString(": ")
			b.WriteString(f.renderer.Duration(last.PrintTime))
		}
	}
	return b.String()
}

func (f *Formatter) label(key string) string {
	if f.localizer == nil {
		return key
	}
	return f.localizer.Translate(key)
}

func (f *Formatter) writeLine(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(lineBreak)
}

func (f *Formatter) writeDimensions(b *strings.Builder, d *Dimensions) {
	if d == nil {
		return
	}
	f.writeLine(b, f.label("Model size"), fmt.Sprintf("%.2fmm × %.2fmm × %.2fmm", d.Width, d.Depth, d.Height))
}

// writeTools lists every tool that actually used filament.
func (f *Formatter) writeTools(b *strings.Builder, filament Filament) {
	if len(filament) < 2 {
		return
	}
	for _, t := range filament {
		if !strings.HasPrefix(t.Key, "tool") || t.Entry == nil || t.Entry.Length == nil || *t.Entry.Length <= 0 {
			continue
		}
		label := fmt.Sprintf("%s (%s %s)", f.label("Filament"), f.label("Tool"), html.EscapeString(strings.TrimPrefix(t.Key, "tool")))
		f.writeLine(b, label, f.renderer.Filament(t.Entry))
	}
}

func (f *Formatter) writePrintTime(b *strings.Builder, seconds *float64, prefs DisplayPreferences) {
	if seconds == nil {
		return
	}
	var value string
	if prefs != nil && prefs.FuzzyTimes() {
		value = f.renderer.FuzzyPrintTime(*seconds)
	} else {
		value = f.renderer.Duration(*seconds)
	}
	f.writeLine(b, f.label("Estimated print time"), value)
}
