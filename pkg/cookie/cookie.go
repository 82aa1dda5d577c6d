package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Default cookie names used across visid.
const (
	// VisitorName is the cookie holding the generated visitor identifier.
	VisitorName = "visitorid"

	// PreferencesName is the cookie holding the comma-joined consent
	// category codes.
	PreferencesName = "otpreferences"
)

// TTL is the lifetime applied to both tracking cookies.
const TTL = 365 * 24 * time.Hour

// Jar is a visitor's cookie store. Implementations are not required to be
// safe for concurrent use unless documented otherwise.
type Jar interface {
	// Get returns the value of the named cookie, or ok=false if absent.
	Get(name string) (value string, ok bool)

	// Set writes the named cookie, overwriting any existing value.
	Set(name, value string)

	// Delete evicts the named cookie.
	Delete(name string)
}

// GetFromHeader scans a raw Cookie header string for name and returns its
// value. Pairs are separated by "; " and the key ends at the first "=";
// the first matching pair wins.
func GetFromHeader(header, name string) (string, bool) {
	for _, pair := range strings.Split(header, "; ") {
		k, v, found := strings.Cut(pair, "=")
		if found && k == name {
			return v, true
		}
	}
	return "", false
}

// newCookie builds a tracking cookie scoped to .{scope} with the standard
// attribute set. A zero expires means now+TTL.
func newCookie(name, value, scope string, expires time.Time) *http.Cookie {
	if expires.IsZero() {
		expires = time.Now().Add(TTL)
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	}
	if scope != "" {
		c.Domain = "." + scope
	}
	return c
}

// expiredCookie builds the eviction form of a cookie: empty value, expiry
// in the past, same scope, path, and flags as the live cookie.
func expiredCookie(name, scope string) *http.Cookie {
	return newCookie(name, "", scope, time.Unix(0, 0))
}
