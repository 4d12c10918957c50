package metadata

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLocalizer struct {
	keys []string
}

func (l *recordingLocalizer) Translate(key string) string {
	l.keys = append(l.keys, key)
	return key
}

type upperLocalizer struct{}

func (upperLocalizer) Translate(key string) string {
	return "[" + key + "]"
}

type stubRenderer struct{}

func (stubRenderer) Duration(seconds float64) string       { return fmt.Sprintf("exact(%g)", seconds) }
func (stubRenderer) FuzzyPrintTime(seconds float64) string { return fmt.Sprintf("fuzzy(%g)", seconds) }
func (stubRenderer) TimeAgo(t time.Time) string            { return fmt.Sprintf("ago(%d)", t.Unix()) }
func (stubRenderer) Filament(e *FilamentEntry) string {
	if e == nil || e.Length == nil {
		return "fil(-)"
	}
	return fmt.Sprintf("fil(%g)", *e.Length)
}

type prefs bool

func (p prefs) FuzzyTimes() bool { return bool(p) }

func mustParse(t *testing.T, doc string) *FileRecord {
	t.Helper()
	rec, err := ParseRecord([]byte(doc))
	require.NoError(t, err)
	return rec
}

func format(rec *FileRecord, fuzzy bool) string {
	return NewFormatter(&recordingLocalizer{}, stubRenderer{}).Format(rec, prefs(fuzzy))
}

func TestHasAdditionalData(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{name: "empty record", doc: `{}`, want: false},
		{name: "unrelated keys", doc: `{"name": "cube.ctb", "size": 1024}`, want: false},
		{name: "null analyses", doc: `{"gcodeAnalysis": null, "analysis": null}`, want: false},
		{name: "prints without last", doc: `{"prints": {"success": 2, "failure": 0}}`, want: false},
		{name: "empty last print", doc: `{"prints": {"last": {}}}`, want: false},
		{name: "gcode analysis", doc: `{"gcodeAnalysis": {}}`, want: true},
		{name: "generic analysis", doc: `{"analysis": {"layer_count": 3}}`, want: true},
		{name: "last print only", doc: `{"prints": {"last": {"date": 1700000000}}}`, want: true},
		{name: "malformed analysis", doc: `{"analysis": "pending"}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAdditionalData(mustParse(t, tt.doc)))
		})
	}
	assert.False(t, HasAdditionalData(nil))
}

func TestFormat_ModelSize(t *testing.T) {
	rec := mustParse(t, `{"gcodeAnalysis": {"dimensions": {"width": 10, "depth": 20.5, "height": 5}}}`)

	assert.Equal(t, "Model size: 10.00mm × 20.50mm × 5.00mm<br>", format(rec, false))
}

func TestFormat_IncompleteDimensionsAreSkipped(t *testing.T) {
	rec := mustParse(t, `{"gcodeAnalysis": {"dimensions": {"width": 10, "depth": "wide"}}}`)

	assert.Equal(t, "", format(rec, false))
}

func TestFormat_Filament(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "gcode single tool",
			doc:  `{"gcodeAnalysis": {"filament": {"tool0": {"length": 0, "volume": 1}}}}`,
			want: "Filament: fil(0)<br>",
		},
		{
			name: "gcode single tool under another key",
			doc:  `{"gcodeAnalysis": {"filament": {"tool3": {"length": 12}}}}`,
			want: "Filament: fil(-)<br>",
		},
		{
			name: "generic single tool renders volume",
			doc:  `{"analysis": {"filament": {"tool0": {"length": 10, "volume": 12.34567}}}}`,
			want: "Volume: 12.346 mL<br>",
		},
		{
			name: "generic single tool without volume",
			doc:  `{"analysis": {"filament": {"tool0": {"length": 10}}}}`,
			want: "",
		},
		{
			name: "generic multiple tools skips zero length",
			doc:  `{"analysis": {"filament": {"tool0": {"length": 100}, "tool1": {"length": 0}}}}`,
			want: "Filament (Tool 0): fil(100)<br>",
		},
		{
			name: "multiple tools keep document order",
			doc:  `{"gcodeAnalysis": {"filament": {"tool2": {"length": 5}, "tool0": {"length": 7}, "tool1": {"length": 9}}}}`,
			want: "Filament (Tool 2): fil(5)<br>Filament (Tool 0): fil(7)<br>Filament (Tool 1): fil(9)<br>",
		},
		{
			name: "multiple tools skip invalid entries",
			doc:  `{"gcodeAnalysis": {"filament": {"total": {"length": 50}, "tool0": null, "tool1": {"volume": 3}, "tool2": {"length": -1}, "tool3": {"length": 1}}}}`,
			want: "Filament (Tool 3): fil(1)<br>",
		},
		{
			name: "empty map",
			doc:  `{"gcodeAnalysis": {"filament": {}}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(mustParse(t, tt.doc), false))
		})
	}
}

func TestFormat_EstimatedPrintTime(t *testing.T) {
	rec := mustParse(t, `{"gcodeAnalysis": {"estimatedPrintTime": 3661}}`)

	exact := format(rec, false)
	assert.Equal(t, "Estimated print time: exact(3661)<br>", exact)
	assert.NotContains(t, exact, "fuzzy")

	assert.Equal(t, "Estimated print time: fuzzy(3661)<br>", format(rec, true))
}

func TestFormat_GenericAnalysisFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "layer count is zero padded", doc: `{"analysis": {"layer_count": 7}}`, want: "Layer count: 07<br>"},
		{name: "layer count", doc: `{"analysis": {"layer_count": 42}}`, want: "Layer count: 42<br>"},
		{name: "layer count truncates", doc: `{"analysis": {"layer_count": 42.9}}`, want: "Layer count: 42<br>"},
		{name: "layer height", doc: `{"analysis": {"layer_height_mm": 0.05}}`, want: "Layer height: 0.05mm<br>"},
		{name: "printer name", doc: `{"analysis": {"printer_name": "Elegoo Mars"}}`, want: "Printer name: Elegoo Mars<br>"},
		{name: "printer name is escaped", doc: `{"analysis": {"printer_name": "<b>Mars</b>"}}`, want: "Printer name: &lt;b&gt;Mars&lt;/b&gt;<br>"},
		{name: "zero values are skipped", doc: `{"analysis": {"layer_count": 0, "layer_height_mm": 0, "printer_name": ""}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(mustParse(t, tt.doc), false))
		})
	}
}

func TestFormat_FullGenericRecord(t *testing.T) {
	rec := mustParse(t, `{
		"analysis": {
			"dimensions": {"width": 82.62, "depth": 130.56, "height": 150},
			"filament": {"tool0": {"length": 10, "volume": 10}},
			"estimatedPrintTime": 6460,
			"layer_count": 3000,
			"layer_height_mm": 0.05,
			"printer_name": "ELEGOO MARS"
		},
		"prints": {"success": 1, "failure": 0, "last": {"date": 1700000000, "printTime": 6500, "success": true}}
	}`)

	want := "Model size: 82.62mm × 130.56mm × 150.00mm<br>" +
		"Volume: 10.000 mL<br>" +
		"Estimated print time: exact(6460)<br>" +
		"Layer count: 3000<br>" +
		"Layer height: 0.05mm<br>" +
		"Printer name: ELEGOO MARS<br>" +
		"Last printed: ago(1700000000)<br>" +
		"Last print time: exact(6500)"
	assert.Equal(t, want, format(rec, false))
}

func TestFormat_GcodeAnalysisTakesPrecedence(t *testing.T) {
	rec := mustParse(t, `{
		"gcodeAnalysis": {"estimatedPrintTime": 120},
		"analysis": {"layer_count": 42, "printer_name": "Photon", "dimensions": {"width": 1, "depth": 1, "height": 1}}
	}`)

	out := format(rec, false)
	assert.Equal(t, "Estimated print time: exact(120)<br>", out)
	assert.NotContains(t, out, "Printer name")
	assert.NotContains(t, out, "Layer count")
	assert.Equal(t, VariantGcode, Variant(rec))
}

func TestFormat_LastPrint(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "date only",
			doc:  `{"prints": {"last": {"date": 1700000000, "success": false}}}`,
			want: "Last printed: ago(1700000000)<br>",
		},
		{
			name: "with print time",
			doc:  `{"prints": {"last": {"date": 1700000000, "printTime": 61}}}`,
			want: "Last printed: ago(1700000000)<br>Last print time: exact(61)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(mustParse(t, tt.doc), true))
		})
	}
}

func TestFormat_EmptyRecord(t *testing.T) {
	assert.Equal(t, "", format(mustParse(t, `{"display": "cube.ctb"}`), false))
	assert.Equal(t, "", format(nil, false))
}

func TestFormat_TranslatesEveryLabel(t *testing.T) {
	rec := mustParse(t, `{
		"gcodeAnalysis": {
			"dimensions": {"width": 1, "depth": 2, "height": 3},
			"filament": {"tool0": {"length": 1}, "tool1": {"length": 2}},
			"estimatedPrintTime": 60
		},
		"prints": {"last": {"date": 1700000000, "printTime": 30}}
	}`)
	localizer := &recordingLocalizer{}

	NewFormatter(localizer, stubRenderer{}).Format(rec, prefs(false))

	assert.Equal(t, []string{
		"Model size",
		"Filament", "Tool",
		"Filament", "Tool",
		"Estimated print time",
		"Last printed",
		"Last print time",
	}, localizer.keys)

	out := NewFormatter(upperLocalizer{}, stubRenderer{}).Format(rec, prefs(false))
	assert.Contains(t, out, "[Filament] ([Tool] 1): fil(2)<br>")
	assert.Contains(t, out, "[Model size]: 1.00mm")
}

func TestFormat_Idempotent(t *testing.T) {
	rec := mustParse(t, `{"analysis": {"filament": {"tool0": {"length": 3}, "tool1": {"length": 4}}, "estimatedPrintTime": 99, "layer_count": 5}}`)
	f := NewFormatter(&recordingLocalizer{}, stubRenderer{})

	first := f.Format(rec, prefs(true))
	second := f.Format(rec, prefs(true))

	assert.Equal(t, first, second)
	assert.Equal(t, first, FormatAdditionalData(rec, prefs(true), &recordingLocalizer{}, stubRenderer{}))
}

func TestVariant(t *testing.T) {
	assert.Equal(t, VariantNone, Variant(nil))
	assert.Equal(t, VariantNone, Variant(mustParse(t, `{}`)))
	assert.Equal(t, VariantGeneric, Variant(mustParse(t, `{"analysis": {}}`)))
	assert.Equal(t, VariantHistory, Variant(mustParse(t, `{"prints": {"last": {"printTime": 5}}}`)))
}
