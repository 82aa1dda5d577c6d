// Package cookie is the only layer in visid that touches cookie state.
//
// The Jar interface abstracts a visitor's cookie store with three
// operations: Get, Set, and Delete. Two implementations are provided:
//
//   - ResponseJar reads from an http.Request's Cookie header and writes
//     Set-Cookie headers on the paired http.ResponseWriter, with the
//     attributes tracking cookies need (365-day expiry, Domain=.{scope},
//     Path=/, SameSite=Lax, Secure).
//   - MemoryJar is an in-process map, used in tests and for the daemon's
//     feed-driven local state.
//
// Header parsing is deliberately minimal: pairs are split on "; ", keys
// from values on the first "=", and the first matching key wins. A missing
// cookie is an absence, never an error.
//
// ScopeFor derives the domain scope used for both tracking cookies: the
// host stripped of one leading subdomain label, so cookies are readable
// across subdomains, with an extra label kept for hosting-platform
// subdomains (*.wpengine.com style) where the customer site lives one
// level deeper.
package cookie
