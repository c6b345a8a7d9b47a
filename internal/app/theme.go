package app

import (
	"net/http"
	"time"
)

// ThemeStore persists the light/dark preference of a visitor
type ThemeStore interface {
	Light(r *http.Request) bool
	SetLight(w http.ResponseWriter, light bool)
}

// CookieThemes keeps the preference in a long-lived cookie. Anything other
// than "light" means dark.
type CookieThemes struct {
	Secure bool
}

// Light reports whether the request carries the light preference
func (t CookieThemes) Light(r *http.Request) bool {
	c, err := r.Cookie(ThemeCookie)
	if err != nil {
		return false
	}
	return c.Value == ThemeLight
}

// SetLight stores the preference on the response
func (t CookieThemes) SetLight(w http.ResponseWriter, light bool) {
	value := ThemeDark
	if light {
		value = ThemeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
