package i18n

import "net/http"

const langCookie = "lang"

// FromRequest picks the display locale: ?lang= wins over the lang cookie,
// anything else falls back to the default locale.
func FromRequest(r *http.Request) Locale {
	if q := r.URL.Query().Get("lang"); q != "" {
		return ParseLocale(q)
	}
	if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
		return ParseLocale(c.Value)
	}
	return DefaultLocale
}
