// Package i18n resolves multilingual field values with a default-locale
// fallback. Every localized attribute in the catalog and content tables is
// stored as a ru/en/uz triplet; the resolver picks the requested locale and
// falls back to the default when the translation is missing.
package i18n

import "strings"

type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
	LocaleUZ Locale = "uz"
)

// DefaultLocale is the primary language of the business.
const DefaultLocale = LocaleRU

// ParseLocale normalizes user input to a supported locale. Anything
// unrecognized maps to the default locale.
func ParseLocale(s string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleEN:
		return LocaleEN
	case LocaleUZ:
		return LocaleUZ
	case LocaleRU:
		return LocaleRU
	default:
		return DefaultLocale
	}
}

// Text holds the per-locale values of one localized field.
type Text struct {
	RU string `json:"ru"`
	EN string `json:"en,omitempty"`
	UZ string `json:"uz,omitempty"`
}

func (t Text) at(loc Locale) string {
	switch loc {
	case LocaleEN:
		return t.EN
	case LocaleUZ:
		return t.UZ
	default:
		return t.RU
	}
}

// In returns the value for loc, falling back to the default locale, then "".
func (t Text) In(loc Locale) string {
	if v := t.at(loc); v != "" {
		return v
	}
	return t.at(DefaultLocale)
}

// Localizer is implemented by entities carrying localized fields. The
// returned map is the entity's complete, statically known set of localized
// base names; there is no runtime probing for columns.
type Localizer interface {
	LocalizedFields() map[string]Text
}

// Resolver resolves a localized field of an entity for a requested locale.
// The zero value falls back to DefaultLocale.
type Resolver struct {
	fallback Locale
}

func NewResolver(fallback Locale) Resolver {
	return Resolver{fallback: fallback}
}

// Resolve returns the field's value under loc, the fallback-locale value if
// the translation is empty, and "" if both are unset or the entity does not
// declare the field. It never fails.
func (r Resolver) Resolve(e Localizer, field string, loc Locale) string {
	if e == nil {
		return ""
	}
	t, ok := e.LocalizedFields()[field]
	if !ok {
		return ""
	}
	if v := t.at(loc); v != "" {
		return v
	}
	fb := r.fallback
	if fb == "" {
		fb = DefaultLocale
	}
	return t.at(fb)
}
