// Package i18n translates display labels using message catalogs embedded in
// the binary.
package i18n

import (
	"embed"
	"fmt"
	"path"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

type Catalog struct {
	bundle *goi18n.Bundle
}

// NewCatalog loads every embedded locale. English is the fallback language.
func NewCatalog() (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, path.Join("locales", entry.Name())); err != nil {
			return nil, fmt.Errorf("failed to load locale %s: %w", entry.Name(), err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

// Languages lists the loaded language tags.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.String())
	}
	return out
}

// Localizer picks the best loaded language for langs. Each element may be a
// tag or a full Accept-Language header value.
func (c *Catalog) Localizer(langs ...string) *Localizer {
	return &Localizer{localizer: goi18n.NewLocalizer(c.bundle, langs...)}
}

type Localizer struct {
	localizer *goi18n.Localizer
}

// Translate returns the translation of key, or key itself when no catalog
// has it.
func (l *Localizer) Translate(key string) string {
	msg, err := l.localizer.Localize(&goi18n.LocalizeConfig{
		DefaultMessage: &goi18n.Message{ID: key, Other: key},
	})
	if err != nil || msg == "" {
		return key
	}
	return msg
}

// TranslatePlural renders the plural form of key for count.
func (l *Localizer) TranslatePlural(key string, count int) string {
	msg, err := l.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
	if err != nil || msg == "" {
		return fmt.Sprintf("%d %s", count, key)
	}
	return msg
}
