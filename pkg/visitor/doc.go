// Package visitor owns the visitor-identifier lifecycle: read any existing
// identifier, consult the consent gate, generate and persist a new
// identifier when permitted, and evict it when consent is withdrawn.
//
// Manager is the core. It holds no global state: the cookie jar, the gate,
// and (for tests) the generator are all injected. The invariant it
// maintains is that the identifier cookie exists exactly when the
// performance category was granted at some point after the last eviction
// and not withdrawn since.
//
// Middleware applies a Manager per HTTP exchange, assigning the identifier
// on the response when the gate allows and exposing it to downstream
// handlers through the request context.
package visitor
