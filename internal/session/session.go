// Package session issues and reads the anonymous session cookie. The token
// is an opaque identifier, not an authentication mechanism.
package session

import (
	"net/http"

	"github.com/google/uuid"
)

const CookieName = "sid"

// Token returns the request's session token, creating and setting one when
// the request carries none.
func Token(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// Existing returns the session token carried by the request, if any.
func Existing(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
