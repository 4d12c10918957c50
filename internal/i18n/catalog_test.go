package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Languages(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "de"}, c.Languages())
}

func TestLocalizer_Translate(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	tests := []struct {
		name  string
		langs []string
		key   string
		want  string
	}{
		{name: "english label", langs: []string{"en"}, key: "Model size", want: "Model size"},
		{name: "german label", langs: []string{"de"}, key: "Model size", want: "Modellgröße"},
		{name: "accept-language header", langs: []string{"de-CH,de;q=0.9,en;q=0.8"}, key: "Layer count", want: "Schichtanzahl"},
		{name: "unsupported language falls back to english", langs: []string{"ja"}, key: "Printer name", want: "Printer name"},
		{name: "unknown key is returned as is", langs: []string{"de"}, key: "Nozzle size", want: "Nozzle size"},
		{name: "no preference", key: "Last printed", want: "Last printed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Localizer(tt.langs...).Translate(tt.key))
		})
	}
}

func TestLocalizer_TranslatePlural(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	en := c.Localizer("en")
	assert.Equal(t, "1 hour", en.TranslatePlural("hours", 1))
	assert.Equal(t, "3 hours", en.TranslatePlural("hours", 3))

	de := c.Localizer("de")
	assert.Equal(t, "1 Tag", de.TranslatePlural("days", 1))
	assert.Equal(t, "5 Minuten", de.TranslatePlural("minutes", 5))

	assert.Equal(t, "4 weeks", en.TranslatePlural("weeks", 4))
}
