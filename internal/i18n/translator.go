package i18n

import (
	"sort"
	"strings"
)

// Translator resolves labels for one locale
type Translator struct {
	locale    string
	overrides map[string]string
	chain     []map[string]string
}

// Locale returns the normalized locale the translator was built for
func (t *Translator) Locale() string {
	return t.locale
}

// T returns the label for key, with or without the texts. prefix.
// Placeholders written as :name are substituted from replacements.
// Unknown keys come back as "texts.<key>".
func (t *Translator) T(key string, replacements map[string]string) string {
	key = strings.TrimPrefix(key, KeyPrefix)

	label, ok := t.lookup(key)
	if !ok {
		return KeyPrefix + key
	}
	if len(replacements) == 0 {
		return label
	}

	// Longest names first so :client_name is not consumed by :client.
	names := make([]string, 0, len(replacements))
	for name := range replacements {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, ":"+name, replacements[name])
	}
	return strings.NewReplacer(pairs...).Replace(label)
}

func (t *Translator) lookup(key string) (string, bool) {
	if label, ok := t.overrides[key]; ok && label != "" {
		return label, true
	}
	for _, texts := range t.chain {
		if label, ok := texts[key]; ok {
			return label, true
		}
	}
	return "", false
}
