package i18n

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when nothing better can be negotiated.
const DefaultLanguage = "en"

// Translator looks up dotted keys in per-language trees and fills %{name} placeholders.
// It is immutable after construction and safe for concurrent use.
type Translator struct {
	translations map[string]map[string]any
	defaultLang  string
	langs        []string
	tagLangs     []string
	matcher      language.Matcher
}

// NewTranslator builds a translator over translations. defaultLang must be present.
func NewTranslator(translations map[string]map[string]any, defaultLang string) (*Translator, error) {
	if len(translations) == 0 {
		return nil, ErrNoTranslations
	}
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}
	if _, ok := translations[defaultLang]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefaultLanguageNotLoaded, defaultLang)
	}

	langs := make([]string, 0, len(translations))
	for lang := range translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	// The default language goes first so the matcher falls back to it.
	tagLangs := []string{defaultLang}
	tags := []language.Tag{language.Make(defaultLang)}
	for _, lang := range langs {
		if lang != defaultLang {
			tagLangs = append(tagLangs, lang)
			tags = append(tags, language.Make(lang))
		}
	}

	return &Translator{
		translations: translations,
		defaultLang:  defaultLang,
		langs:        langs,
		tagLangs:     tagLangs,
		matcher:      language.NewMatcher(tags),
	}, nil
}

// Languages lists the loaded language codes, sorted.
func (t *Translator) Languages() []string {
	return slices.Clone(t.langs)
}

func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Match negotiates the best loaded language for an Accept-Language header
// or a plain language code such as "tr" or "en-GB".
func (t *Translator) Match(accept string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return t.defaultLang
	}
	if _, ok := t.translations[accept]; ok {
		return accept
	}
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.defaultLang
	}
	return t.tagLangs[idx]
}

// Has reports whether lang defines key.
func (t *Translator) Has(lang, key string) bool {
	_, ok := t.lookup(lang, key)
	return ok
}

// T translates key into lang. args are name/value pairs substituted into %{name}
// placeholders. Missing keys fall back to the default language, then to the key itself.
func (t *Translator) T(lang, key string, args ...string) string {
	tmpl, ok := t.lookup(lang, key)
	if !ok {
		tmpl, ok = t.lookup(t.defaultLang, key)
	}
	if !ok {
		tmpl = key
	}
	return substitute(tmpl, args)
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	current, ok := t.translations[lang]
	if !ok {
		return "", false
	}

	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			s, ok := val.(string)
			return s, ok
		}
		if current, ok = val.(map[string]any); !ok {
			return "", false
		}
	}
	return "", false
}

var placeholder = regexp.MustCompile(`%\{([^}]+)\}`)

func substitute(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}
