package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Locales are the 22 Indian constitutional languages plus English, which is
// the default. The order matches the language selector in the UI.
var Locales = []string{
	"en", "hi", "bn", "te", "mr", "ta", "ur", "gu", "kn", "ml", "or", "pa",
	"as", "mai", "sa", "sat", "ks", "ne", "sd", "gom", "mni", "doi", "brx",
}

const DefaultLocale = "en"

// IsSupported reports whether code is one of the serving locales.
func IsSupported(code string) bool {
	for _, l := range Locales {
		if l == code {
			return true
		}
	}
	return false
}

// Support wraps a go-i18n bundle loaded with one JSON message file per
// supported locale.
type Support struct {
	bundle *i18n.Bundle
}

// New loads locales/<code>.json for every supported code found under dir.
// Missing files are tolerated; those locales fall back to the default
// messages, and unknown keys fall back to the key itself.
func New(dir string) (*Support, error) {
	bundle := i18n.NewBundle(language.MustParse(DefaultLocale))
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	loaded := 0
	for _, code := range Locales {
		path := filepath.Join(dir, code+".json")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if _, err := bundle.LoadMessageFile(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no message files found in %s", dir)
	}
	return &Support{bundle: bundle}, nil
}

// T translates key for the given locale, falling back to the default
// locale and finally to the key itself.
func (s *Support) T(locale, key string, data map[string]interface{}) string {
	localizer := i18n.NewLocalizer(s.bundle, locale, DefaultLocale)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}
