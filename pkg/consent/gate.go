package consent

import "github.com/getvisid/visid/pkg/cookie"

// Gate decides whether identifier generation and eviction are currently
// permitted, based on the persisted preference cookie.
type Gate struct {
	// OptInRequired controls the default when no preference cookie exists:
	// nil or true means absence of consent denies tracking, false means
	// absence allows it. Tri-state so an unset config can be told apart
	// from an explicit false.
	OptInRequired *bool

	// PreferenceCookie overrides the preference cookie name. Empty means
	// cookie.PreferencesName.
	PreferenceCookie string
}

func (g *Gate) cookieName() string {
	if g.PreferenceCookie != "" {
		return g.PreferenceCookie
	}
	return cookie.PreferencesName
}

func (g *Gate) optInRequired() bool {
	return g.OptInRequired == nil || *g.OptInRequired
}

// Allowed reports whether tracking is currently permitted for the visitor
// behind jar. With no preference cookie the answer is the opt-in default;
// otherwise it is the recorded grant of the performance category.
func (g *Gate) Allowed(jar cookie.Jar) bool {
	value, ok := jar.Get(g.cookieName())
	if !ok {
		return !g.optInRequired()
	}
	return ParseState(value).PerformanceGranted()
}

// Record persists the full category set to the preference cookie. This is
// a functional cookie and is written regardless of what the set contains.
func (g *Gate) Record(jar cookie.Jar, s State) {
	jar.Set(g.cookieName(), s.Encode())
}
