package oauth2

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

// StateCookieName is the cookie carrying the CSRF state across the
// provider redirect.
const StateCookieName = "oauthstate"

// CallbackURLCookieName remembers where to send the client after the
// provider round trip.
const CallbackURLCookieName = "oauthCallbackURL"

// GenerateStateCookie creates a random CSRF state, sets it as a cookie on
// the response and returns it.
func GenerateStateCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
	})
	return state
}

// ValidateState compares the state query parameter against the state
// cookie and clears the cookie.
func ValidateState(w http.ResponseWriter, r *http.Request) bool {
	cookie, _ := r.Cookie(StateCookieName)
	http.SetCookie(w, &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1})
	return cookie != nil && cookie.Value != "" && r.FormValue("state") == cookie.Value
}

// Redirector returns a handler that records the desired post-auth
// callback URL, sets the CSRF state and sends the client to the
// provider's consent page.
func Redirector(p Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if callbackURL := r.URL.Query().Get("callbackURL"); callbackURL != "" {
			http.SetCookie(w, &http.Cookie{
				Name:   CallbackURLCookieName,
				Value:  callbackURL,
				Path:   "/",
				MaxAge: 120, // keep this short
			})
		}
		state := GenerateStateCookie(w)
		http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
	}
}
