// Package display holds the default value renderers used by the metadata
// panel.
package display

import (
	"fmt"
	"math"
	"time"

	"github.com/frodejac/printshelf/internal/metadata"
	"github.com/mergestat/timediff"
	"github.com/mergestat/timediff/locale"
)

// Localizer is the subset of i18n.Localizer the renderer needs.
type Localizer interface {
	Translate(key string) string
	TranslatePlural(key string, count int) string
}

// Preferences is a fixed set of appearance settings.
type Preferences struct {
	Fuzzy bool
}

func (p Preferences) FuzzyTimes() bool {
	return p.Fuzzy
}

type Renderer struct {
	localizer Localizer
	ago       locale.Formatters
	now       func() time.Time
}

func NewRenderer(localizer Localizer) *Renderer {
	return &Renderer{localizer: localizer, ago: agoFormatters(localizer), now: time.Now}
}

// WithClock returns a copy of r that measures relative times against now.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	return &Renderer{localizer: r.localizer, ago: r.ago, now: now}
}

// agoFormatters keeps timediff's buckets and takes the wording from the
// catalog. Each key is the largest duration its formatter covers.
func agoFormatters(l Localizer) locale.Formatters {
	const (
		day   = 24 * time.Hour
		month = 30 * day
		year  = 12 * month
	)
	plural := func(key string, unit time.Duration) locale.Formatter {
		return func(d time.Duration) string {
			return l.TranslatePlural(key, int(math.Ceil(float64(d)/float64(unit))))
		}
	}
	one := func(key string) locale.Formatter {
		return func(time.Duration) string { return l.TranslatePlural(key, 1) }
	}
	return locale.Formatters{
		44 * time.Second: func(time.Duration) string { return l.Translate("a few seconds ago") },
		89 * time.Second: one("minutes ago"),
		44 * time.Minute: plural("minutes ago", time.Minute),
		89 * time.Minute: one("hours ago"),
		21 * time.Hour:   plural("hours ago", time.Hour),
		35 * time.Hour:   one("days ago"),
		25 * day:         plural("days ago", day),
		45 * day:         one("months ago"),
		10 * month:       plural("months ago", month),
		17 * month:       one("years ago"),
		1<<63 - 1:       plural("years ago", year),
	}
}

// Duration renders seconds as HH:MM:SS. Hours are not capped at 24. Zero
// means unknown and renders as "-".
func (r *Renderer) Duration(seconds float64) string {
	if seconds == 0 || math.IsNaN(seconds) {
		return "-"
	}
	if seconds < 1 {
		return "00:00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FuzzyPrintTime renders an approximate duration such as "approx. 2 hours 15 minutes".
func (r *Renderer) FuzzyPrintTime(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "-"
	}
	total := int64(math.Round(seconds))
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60

	var text string
	switch {
	case days >= 1:
		if minutes >= 30 {
			hours++
		}
		if hours == 24 {
			days++
			hours = 0
		}
		text = r.localizer.TranslatePlural("days", int(days))
		if hours > 0 {
			text += " " + r.localizer.TranslatePlural("hours", int(hours))
		}
	case hours >= 1:
		// nearest five minutes
		minutes = int64(math.Round(float64(total%3600)/300)) * 5
		if minutes == 60 {
			hours++
			minutes = 0
		}
		text = r.localizer.TranslatePlural("hours", int(hours))
		if minutes > 0 {
			text += " " + r.localizer.TranslatePlural("minutes", int(minutes))
		}
	case minutes >= 1:
		minutes = int64(math.Round(float64(total) / 60))
		text = r.localizer.TranslatePlural("minutes", int(minutes))
	default:
		text = r.localizer.Translate("less than a minute")
	}
	return r.localizer.Translate("approx.") + " " + text
}

// TimeAgo renders t relative to the renderer's clock in the localizer's
// language, e.g. "3 hours ago". Times in the future count as just now.
func (r *Renderer) TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	now := r.now()
	if t.After(now) {
		t = now
	}
	return timediff.TimeDiff(t, timediff.WithStartTime(now), timediff.WithCustomFormatters(r.ago))
}

// Filament renders a tool's usage as metres of filament plus volume.
func (r *Renderer) Filament(e *metadata.FilamentEntry) string {
	if e == nil || e.Length == nil || *e.Length == 0 {
		return "-"
	}
	out := fmt.Sprintf("%.2fm", *e.Length/1000)
	if e.Volume != nil && *e.Volume != 0 {
		out += fmt.Sprintf(" / %.2fcm³", *e.Volume)
	}
	return out
}
