// Package i18n resolves dotted translation keys against the embedded locale
// trees, falling back to the default locale and finally to the key itself.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Locale identifies a supported language.
type Locale string

const (
	English Locale = "en"
	French  Locale = "fr"

	// DefaultLocale is consulted whenever the active locale lacks a key.
	DefaultLocale = English
)

// Supported lists the locales with an embedded tree.
var Supported = []Locale{English, French}

//go:embed locales/*.json
var localeFS embed.FS

// ParseLocale accepts "en" or "fr" in any case.
func ParseLocale(value string) (Locale, bool) {
	candidate := Locale(strings.ToLower(strings.TrimSpace(value)))
	for _, locale := range Supported {
		if candidate == locale {
			return locale, true
		}
	}
	return "", false
}

// Catalog holds one nested text tree per locale.
type Catalog struct {
	trees    map[Locale]map[string]any
	fallback Locale
}

// Load reads the embedded locale trees.
func Load() (*Catalog, error) {
	trees := make(map[Locale]map[string]any, len(Supported))
	for _, locale := range Supported {
		raw, err := localeFS.ReadFile("locales/" + string(locale) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", locale, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", locale, err)
		}
		trees[locale] = tree
	}
	return NewCatalog(trees), nil
}

// NewCatalog builds a catalog from already-decoded trees.
func NewCatalog(trees map[Locale]map[string]any) *Catalog {
	if trees == nil {
		trees = map[Locale]map[string]any{}
	}
	return &Catalog{trees: trees, fallback: DefaultLocale}
}

// Tree returns the raw tree of a locale.
func (c *Catalog) Tree(locale Locale) (map[string]any, bool) {
	tree, ok := c.trees[locale]
	return tree, ok
}

var placeholder = regexp.MustCompile(`\{[^{}]+\}`)

// Resolve looks key up in the locale tree, then in the default tree, and
// returns the key verbatim when neither has a string there. Each "{name}"
// placeholder of the resolved text is replaced once by the matching
// parameter; unknown placeholders are left as they are.
func (c *Catalog) Resolve(locale Locale, key string, params map[string]any) string {
	segments := strings.Split(key, ".")

	value, ok := descend(c.trees[locale], segments)
	if !ok {
		value, ok = descend(c.trees[c.fallback], segments)
		if !ok {
			return key
		}
	}

	text, isString := value.(string)
	if !isString || text == "" {
		return key
	}

	if len(params) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		param, ok := params[match[1:len(match)-1]]
		if !ok {
			return match
		}
		return fmt.Sprint(param)
	})
}

// Translator binds a catalog to one locale.
type Translator func(key string, params map[string]any) string

// For returns a translator for the locale.
func (c *Catalog) For(locale Locale) Translator {
	return func(key string, params map[string]any) string {
		return c.Resolve(locale, key, params)
	}
}

func descend(tree map[string]any, segments []string) (any, bool) {
	if tree == nil {
		return nil, false
	}
	var current any = tree
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
