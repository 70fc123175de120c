// Package i18n loads the translation catalogs used for export headers,
// status labels and notification mails.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FallbackLocale is consulted after the requested locale and its language
const FallbackLocale = "en"

// KeyPrefix namespaces every catalog key
const KeyPrefix = "texts."

//go:embed locales/*.yaml
var embedded embed.FS

// Catalog holds the labels of every loaded locale
type Catalog struct {
	locales map[string]map[string]string
}

type localeFile struct {
	Texts map[string]string `yaml:"texts"`
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads every <locale>.yaml file at the root of fsys
func Load(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}

	c := &Catalog{locales: make(map[string]map[string]string, len(files))}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var lf localeFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}
		c.locales[normalize(strings.TrimSuffix(path.Base(file), ".yaml"))] = lf.Texts
	}

	if _, ok := c.locales[FallbackLocale]; !ok {
		return nil, fmt.Errorf("locale catalog is missing the %q fallback", FallbackLocale)
	}
	return c, nil
}

// Locales returns the loaded locale names, sorted
func (c *Catalog) Locales() []string {
	names := make([]string, 0, len(c.locales))
	for name := range c.locales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Translator binds the catalog to a locale. Overrides are company-specific
// labels keyed without the texts. prefix and win over catalog entries.
func (c *Catalog) Translator(locale string, overrides map[string]string) *Translator {
	locale = normalize(locale)
	if locale == "" {
		locale = FallbackLocale
	}

	var chain []map[string]string
	seen := make(map[string]bool, 3)
	for _, candidate := range []string{locale, language(locale), FallbackLocale} {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		if texts, ok := c.locales[candidate]; ok {
			chain = append(chain, texts)
		}
	}

	return &Translator{locale: locale, overrides: overrides, chain: chain}
}

// normalize maps "de-AT" and "de_at" to "de_AT"
func normalize(locale string) string {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")
	lang, region, found := strings.Cut(locale, "_")
	if !found {
		return strings.ToLower(lang)
	}
	return strings.ToLower(lang) + "_" + strings.ToUpper(region)
}

func language(locale string) string {
	lang, _, _ := strings.Cut(locale, "_")
	return lang
}
