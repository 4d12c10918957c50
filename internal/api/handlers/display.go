package handlers

import (
	"net/http"
	"strconv"

	"github.com/frodejac/printshelf/internal/display"
	"github.com/frodejac/printshelf/internal/files"
	"github.com/frodejac/printshelf/internal/i18n"
	"github.com/frodejac/printshelf/internal/metadata"
)

// Display picks the language and time format metadata panels are rendered
// with for a request.
type Display struct {
	catalog         *i18n.Catalog
	defaultLanguage string
	fuzzyTimes      bool
}

func NewDisplay(catalog *i18n.Catalog, defaultLanguage string, fuzzyTimes bool) *Display {
	return &Display{catalog: catalog, defaultLanguage: defaultLanguage, fuzzyTimes: fuzzyTimes}
}

// View honours ?lang= and ?fuzzy= before the Accept-Language header and
// the configured defaults.
func (d *Display) View(r *http.Request) files.View {
	query := r.URL.Query()
	var langs []string
	if lang := query.Get("lang"); lang != "" {
		langs = append(langs, lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		langs = append(langs, accept)
	}
	langs = append(langs, d.defaultLanguage)
	localizer := d.catalog.Localizer(langs...)

	return files.View{
		Formatter:   metadata.NewFormatter(localizer, display.NewRenderer(localizer)),
		Preferences: display.Preferences{Fuzzy: d.fuzzy(r)},
	}
}

func (d *Display) fuzzy(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("fuzzy")); err == nil {
		return v
	}
	return d.fuzzyTimes
}
