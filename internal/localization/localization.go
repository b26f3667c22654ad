// Package localization serves the relay's user-facing texts from per-language
// JSON catalogs.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// FallbackLanguage is consulted when a key is missing from the requested language.
const FallbackLanguage = "en"

//go:embed locales/*.json
var bundled embed.FS

type catalog map[string]string

// Localizer holds one catalog per language. It is read-only after
// construction and safe for concurrent use.
type Localizer struct {
	catalogs map[string]catalog
}

// NewLocalizer loads every <lang>.json file in dir.
func NewLocalizer(fsys fs.FS, dir string) (*Localizer, error) {
	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil, fmt.Errorf("localization directory %s: %w", dir, err)
	}
	files, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("localization directory %s: %w", dir, err)
	}

	l := &Localizer{catalogs: make(map[string]catalog, len(files))}
	for _, file := range files {
		c, err := loadCatalog(fsys, file)
		if err != nil {
			return nil, err
		}
		l.catalogs[strings.TrimSuffix(path.Base(file), ".json")] = c
	}
	return l, nil
}

func loadCatalog(fsys fs.FS, file string) (catalog, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading locale %s: %w", path.Base(file), err)
	}
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing locale %s: %w", path.Base(file), err)
	}
	return c, nil
}

// Bundled returns a Localizer backed by the locale files compiled into the binary.
func Bundled() *Localizer {
	l, err := NewLocalizer(bundled, "locales")
	if err != nil {
		panic(err)
	}
	return l
}

// Languages lists the loaded language codes in sorted order.
func (l *Localizer) Languages() []string {
	langs := make([]string, 0, len(l.catalogs))
	for lang := range l.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether a catalog exists for lang.
func (l *Localizer) Supports(lang string) bool {
	_, ok := l.catalogs[lang]
	return ok
}

// Resolve returns lang if it is loaded and FallbackLanguage otherwise. The
// second result is false when the fallback was taken.
func (l *Localizer) Resolve(lang string) (string, bool) {
	if l.Supports(lang) {
		return lang, true
	}
	return FallbackLanguage, false
}

// GetString returns the text for key in lang, then in FallbackLanguage, and
// finally the key itself.
func (l *Localizer) GetString(lang, key string) string {
	for _, candidate := range []string{lang, FallbackLanguage} {
		if value, ok := l.catalogs[candidate][key]; ok {
			return value
		}
	}
	return key
}

// Format looks up key and formats it with args.
func (l *Localizer) Format(lang, key string, args ...any) string {
	return fmt.Sprintf(l.GetString(lang, key), args...)
}
